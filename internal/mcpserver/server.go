// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the Apple Books library and page previews for LLM integration
// via stdio transport. It is read-only: nothing here writes to Logseq.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/library"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/template"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp      *server.MCPServer
	source   library.Source
	registry []models.Book
	tmpl     *template.Template
}

// New creates a new MCP server with all Ansuz tools registered. registry
// may be nil when no registry file exists yet.
func New(source library.Source, registry []models.Book, tmpl *template.Template) *Server {
	s := &Server{source: source, registry: registry, tmpl: tmpl}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("list_books",
		mcp.WithDescription("List the books in the Apple Books library with their "+
			"reading metadata and sync settings."),
	), s.listBooks)

	s.mcp.AddTool(mcp.NewTool("get_highlights",
		mcp.WithDescription("Return the highlights and notes for one book, in creation order."),
		mcp.WithString("asset_id", mcp.Required(), mcp.Description("Apple Books asset id of the book")),
	), s.getHighlights)

	s.mcp.AddTool(mcp.NewTool("preview_page",
		mcp.WithDescription("Render the Logseq page for a book through the current template "+
			"without writing anything."),
		mcp.WithString("asset_id", mcp.Required(), mcp.Description("Apple Books asset id of the book")),
	), s.previewPage)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type bookItem struct {
	AssetID         string  `json:"asset_id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	ReadingProgress float64 `json:"reading_progress,omitempty"`
	Finished        bool    `json:"finished,omitempty"`
	LastOpened      string  `json:"last_opened,omitempty"`
	Sync            bool    `json:"sync"`
	Alias           string  `json:"alias,omitempty"`
}

func (s *Server) listBooks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	books, err := s.source.ListBooks()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	settings := make(map[string]models.Book, len(s.registry))
	for _, b := range s.registry {
		settings[b.ID] = b
	}

	items := make([]bookItem, 0, len(books))
	for _, b := range books {
		item := bookItem{
			AssetID:         b.ID,
			Title:           b.Title,
			Author:          b.Author,
			ReadingProgress: b.ReadingProgress,
			Finished:        b.Finished,
			LastOpened:      b.LastOpened,
		}
		if reg, ok := settings[b.ID]; ok {
			item.Sync = reg.Sync
			item.Alias = reg.Alias
		}
		items = append(items, item)
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

type highlightItem struct {
	Text      string `json:"text"`
	Note      string `json:"note,omitempty"`
	Page      string `json:"page,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (s *Server) getHighlights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	assetID, err := req.RequireString("asset_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	annotations, err := s.source.ListAnnotations(assetID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(annotations) == 0 {
		return mcp.NewToolResultText("no highlights found"), nil
	}

	items := make([]highlightItem, 0, len(annotations))
	for _, a := range annotations {
		items = append(items, highlightItem{
			Text: a.Text, Note: a.Note, Page: a.Page, CreatedAt: a.CreatedAt,
		})
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) previewPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	assetID, err := req.RequireString("asset_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	title, author := "Unknown", "Unknown"
	books, err := s.source.ListBooks()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	found := false
	for _, b := range books {
		if b.ID == assetID {
			title, author, found = b.Title, b.Author, true
			break
		}
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("no book with asset id %q", assetID)), nil
	}

	annotations, err := s.source.ListAnnotations(assetID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	syncDate := time.Now().Format("2006-01-02")
	body := s.tmpl.Render(template.BookContext(title, author, syncDate, annotations))
	return mcp.NewToolResultText(body), nil
}
