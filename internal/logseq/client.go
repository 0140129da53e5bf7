// Package logseq is a thin client for the Logseq HTTP API.
//
// Every API call is a JSON POST of {method, args} against a single endpoint.
// Page replacement is not a primitive Logseq offers, so ReplacePage composes
// it: remove the page's root blocks, then batch-insert the new block tree.
package logseq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TransportError is a failed remote call: either the request never
// completed (Cause set) or the server answered with a non-success status.
// Recoverable per book; it never aborts the batch.
type TransportError struct {
	Method string
	Status int
	Cause  error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("logseq: %s: %v", e.Method, e.Cause)
	}
	return fmt.Sprintf("logseq: %s: unexpected status %d", e.Method, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// Client calls the Logseq HTTP API.
type Client struct {
	url    string
	token  string
	client *http.Client
}

// New creates a client for the given endpoint. timeout bounds each call.
func New(url, token string, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

type request struct {
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

// call performs one API invocation and returns the raw JSON result.
func (c *Client) call(ctx context.Context, method string, args ...any) (json.RawMessage, error) {
	if args == nil {
		args = []any{}
	}
	payload, err := json.Marshal(request{Method: method, Args: args})
	if err != nil {
		return nil, fmt.Errorf("logseq: marshal %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("logseq: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Method: method, Status: resp.StatusCode}
	}
	return json.RawMessage(body), nil
}

// CheckConnection verifies the API endpoint answers at all. Called once
// before any page work so a dead endpoint aborts the run early.
func (c *Client) CheckConnection(ctx context.Context) error {
	_, err := c.call(ctx, "logseq.App.getInfo")
	return err
}

type page struct {
	UUID string `json:"uuid"`
}

// getPage returns the page's uuid, or exists=false when Logseq reports null.
func (c *Client) getPage(ctx context.Context, name string) (uuid string, exists bool, err error) {
	raw, err := c.call(ctx, "logseq.Editor.getPage", name)
	if err != nil {
		return "", false, err
	}
	var p *page
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", false, &TransportError{Method: "logseq.Editor.getPage", Cause: err}
	}
	if p == nil || p.UUID == "" {
		return "", false, nil
	}
	return p.UUID, true, nil
}

// PageExists reports whether a page with the given name exists.
func (c *Client) PageExists(ctx context.Context, name string) (bool, error) {
	_, exists, err := c.getPage(ctx, name)
	return exists, err
}

// CreatePage creates a page and fills it with the rendered body.
func (c *Client) CreatePage(ctx context.Context, name, body string) error {
	raw, err := c.call(ctx, "logseq.Editor.createPage", name, map[string]any{}, map[string]any{"createFirstBlock": false})
	if err != nil {
		return err
	}
	var p *page
	if err := json.Unmarshal(raw, &p); err != nil {
		return &TransportError{Method: "logseq.Editor.createPage", Cause: err}
	}
	if p == nil || p.UUID == "" {
		return &TransportError{Method: "logseq.Editor.createPage", Cause: fmt.Errorf("no page returned for %q", name)}
	}
	return c.insertBlocks(ctx, p.UUID, body)
}

// ReplacePage sets the page's entire content to the rendered body. The page
// is created when absent, so ReplacePage is safe to call unconditionally.
func (c *Client) ReplacePage(ctx context.Context, name, body string) error {
	uuid, exists, err := c.getPage(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return c.CreatePage(ctx, name, body)
	}

	raw, err := c.call(ctx, "logseq.Editor.getPageBlocksTree", name)
	if err != nil {
		return err
	}
	// A page without blocks decodes as null, which leaves the slice empty.
	var blocks []page
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return &TransportError{Method: "logseq.Editor.getPageBlocksTree", Cause: err}
	}
	for _, b := range blocks {
		if b.UUID == "" {
			continue
		}
		if _, err := c.call(ctx, "logseq.Editor.removeBlock", b.UUID); err != nil {
			return err
		}
	}

	return c.insertBlocks(ctx, uuid, body)
}

// insertBlocks parses body into a block tree and batch-inserts it under the
// page uuid. An empty body leaves the page empty.
func (c *Client) insertBlocks(ctx context.Context, uuid, body string) error {
	blocks := ParseBlocks(body)
	if len(blocks) == 0 {
		return nil
	}
	_, err := c.call(ctx, "logseq.Editor.insertBatchBlock", uuid, blocks, map[string]any{"sibling": true})
	return err
}
