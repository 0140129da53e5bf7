package logseq

import "testing"

func TestParseBlocks_Flat(t *testing.T) {
	blocks := ParseBlocks("- one\n- two\n- three")
	if len(blocks) != 3 {
		t.Fatalf("len = %d, want 3", len(blocks))
	}
	if blocks[0].Content != "one" || blocks[2].Content != "three" {
		t.Errorf("contents = %q %q", blocks[0].Content, blocks[2].Content)
	}
	if blocks[0].Children != nil {
		t.Error("flat blocks must have no children")
	}
}

func TestParseBlocks_TwoSpaceNesting(t *testing.T) {
	blocks := ParseBlocks("- parent\n  - child\n    - grandchild\n- sibling")
	if len(blocks) != 2 {
		t.Fatalf("roots = %d, want 2", len(blocks))
	}
	p := blocks[0]
	if len(p.Children) != 1 || p.Children[0].Content != "child" {
		t.Fatalf("children = %+v", p.Children)
	}
	if len(p.Children[0].Children) != 1 || p.Children[0].Children[0].Content != "grandchild" {
		t.Errorf("grandchildren = %+v", p.Children[0].Children)
	}
	if blocks[1].Content != "sibling" {
		t.Errorf("second root = %q", blocks[1].Content)
	}
}

func TestParseBlocks_TabNesting(t *testing.T) {
	blocks := ParseBlocks("- a\n\t- b\n\t\t- c")
	if len(blocks) != 1 {
		t.Fatalf("roots = %d, want 1", len(blocks))
	}
	if len(blocks[0].Children) != 1 || len(blocks[0].Children[0].Children) != 1 {
		t.Errorf("tab nesting broken: %+v", blocks[0])
	}
}

func TestParseBlocks_DedentReturnsToParent(t *testing.T) {
	blocks := ParseBlocks("- a\n  - b\n    - c\n  - d")
	a := blocks[0]
	if len(a.Children) != 2 {
		t.Fatalf("a.children = %d, want 2", len(a.Children))
	}
	if a.Children[1].Content != "d" {
		t.Errorf("dedented block = %q, want d", a.Children[1].Content)
	}
}

func TestParseBlocks_SkipsBlankAndStripsBullet(t *testing.T) {
	blocks := ParseBlocks("- keep\n\n   \nbare line")
	if len(blocks) != 2 {
		t.Fatalf("len = %d, want 2", len(blocks))
	}
	if blocks[0].Content != "keep" {
		t.Errorf("bullet not stripped: %q", blocks[0].Content)
	}
	if blocks[1].Content != "bare line" {
		t.Errorf("bare line = %q", blocks[1].Content)
	}
}

func TestParseBlocks_OrphanIndentBecomesRoot(t *testing.T) {
	blocks := ParseBlocks("  - floating")
	if len(blocks) != 1 || blocks[0].Content != "floating" {
		t.Errorf("blocks = %+v", blocks)
	}
}

func TestParseBlocks_Empty(t *testing.T) {
	if got := ParseBlocks(""); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}
