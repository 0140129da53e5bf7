package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ansuz/internal/library"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/template"
	"github.com/starford/ansuz/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	booksPath, annPath := testutil.FixtureLibrary(t,
		[]testutil.FixtureBook{
			{AssetID: "B1", Title: "Atomic Habits", Author: "James Clear", LastOpen: 700000000},
		},
		[]testutil.FixtureAnnotation{
			{AssetID: "B1", Text: "Small habits compound", Created: 100},
			{AssetID: "B1", Text: "Make it obvious", Note: "cues matter", Created: 200},
		},
	)
	source, err := library.Open(booksPath, annPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { source.Close() })

	tmpl, err := template.Compile(template.Default)
	if err != nil {
		t.Fatal(err)
	}

	registry := []models.Book{{ID: "B1", Title: "Atomic Habits", Author: "James Clear", Sync: true}}
	return New(source, registry, tmpl)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_books":
		result, err = srv.listBooks(ctx, req)
	case "get_highlights":
		result, err = srv.getHighlights(ctx, req)
	case "preview_page":
		result, err = srv.previewPage(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListBooks(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "list_books", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, `"asset_id": "B1"`) {
		t.Errorf("asset id missing: %s", text)
	}
	if !strings.Contains(text, `"sync": true`) {
		t.Errorf("registry sync flag not merged in: %s", text)
	}
}

func TestGetHighlights(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_highlights", map[string]interface{}{"asset_id": "B1"})
	text := resultText(r)
	if !strings.Contains(text, "Small habits compound") || !strings.Contains(text, "cues matter") {
		t.Errorf("highlights missing: %s", text)
	}
	// Creation order.
	if strings.Index(text, "Small habits compound") > strings.Index(text, "Make it obvious") {
		t.Errorf("highlights out of order: %s", text)
	}
}

func TestGetHighlights_UnknownBook(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_highlights", map[string]interface{}{"asset_id": "nope"})
	if resultText(r) != "no highlights found" {
		t.Errorf("result = %q", resultText(r))
	}
}

func TestPreviewPage(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "preview_page", map[string]interface{}{"asset_id": "B1"})
	text := resultText(r)
	if !strings.HasPrefix(text, "- author:: [[James Clear]]") {
		t.Errorf("preview prefix wrong:\n%s", text)
	}
	if !strings.Contains(text, "- Note:: cues matter") {
		t.Errorf("note block missing:\n%s", text)
	}
}

func TestPreviewPage_UnknownBook(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "preview_page", map[string]interface{}{"asset_id": "nope"})
	if !r.IsError {
		t.Error("expected error for unknown asset id")
	}
}
