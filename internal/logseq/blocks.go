package logseq

import "strings"

// Block is one node of the batch-insert payload Logseq's insertBatchBlock
// expects (IBatchBlock: content plus optional children).
type Block struct {
	Content  string   `json:"content"`
	Children []*Block `json:"children,omitempty"`
}

// ParseBlocks turns rendered page text into a nested block tree. Nesting
// follows leading indentation: one tab or two spaces per level. A leading
// "- " bullet is stripped, it is implied by the block structure. Lines whose
// level skips past the current stack attach to the deepest open block, or
// become roots when nothing is open.
func ParseBlocks(content string) []*Block {
	type frame struct {
		depth int
		block *Block
	}

	var roots []*Block
	var stack []frame

	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		body := strings.TrimLeft(line, " \t")
		leading := line[:len(line)-len(body)]

		depth := 0
		if strings.Contains(leading, "\t") {
			depth = strings.Count(leading, "\t")
		} else {
			depth = len(leading) / 2
		}

		body = strings.TrimPrefix(body, "- ")
		if strings.TrimSpace(body) == "" {
			continue
		}

		nb := &Block{Content: body}
		if depth == 0 {
			roots = append(roots, nb)
			stack = []frame{{0, nb}}
			continue
		}

		for len(stack) > 0 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			parent := stack[len(stack)-1].block
			parent.Children = append(parent.Children, nb)
			stack = append(stack, frame{depth, nb})
		} else {
			// Indented line with no parent in sight: promote to root.
			roots = append(roots, nb)
			stack = []frame{{depth, nb}}
		}
	}
	return roots
}
