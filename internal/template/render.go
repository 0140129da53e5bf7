package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

// Context is the data a template renders against. Values are strings,
// numbers, booleans, nested maps, or []any sequences.
type Context map[string]any

// BookContext builds the per-book render context: title, author, the
// invocation date, and the ordered highlights.
func BookContext(title, author, syncDate string, highlights []models.Annotation) Context {
	hs := make([]any, 0, len(highlights))
	for _, a := range highlights {
		hs = append(hs, map[string]any{
			"text":       a.Text,
			"note":       a.Note,
			"page":       a.Page,
			"created_at": a.CreatedAt,
		})
	}
	return Context{
		"title":      title,
		"author":     author,
		"sync_date":  syncDate,
		"highlights": hs,
	}
}

// Render renders the template against ctx. It never fails: absent names
// render as empty strings and non-iterable sequences loop zero times.
// Lines left empty or whitespace-only after substitution are dropped, since
// the Logseq outline format has no blank lines.
func (t *Template) Render(ctx Context) string {
	var b strings.Builder
	scopes := []map[string]any{ctx}
	renderNodes(&b, t.nodes, scopes)
	return dropBlankLines(b.String())
}

func renderNodes(b *strings.Builder, nodes []node, scopes []map[string]any) {
	for _, n := range nodes {
		switch n := n.(type) {
		case textNode:
			b.WriteString(n.text)

		case varNode:
			b.WriteString(stringify(lookup(n.path, scopes)))

		case forNode:
			seq, _ := lookup(n.seq, scopes).([]any)
			for _, elem := range seq {
				scope := map[string]any{n.loopVar: elem}
				renderNodes(b, n.body, append(scopes, scope))
			}

		case ifNode:
			if truthy(lookup(n.path, scopes)) {
				renderNodes(b, n.body, scopes)
			}
		}
	}
}

// lookup resolves a dotted path against the scope stack, innermost first.
// Any unresolvable step yields nil.
func lookup(path []string, scopes []map[string]any) any {
	var v any
	found := false
	for i := len(scopes) - 1; i >= 0; i-- {
		if val, ok := scopes[i][path[0]]; ok {
			v, found = val, true
			break
		}
	}
	if !found {
		return nil
	}
	for _, field := range path[1:] {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v, ok = m[field]
		if !ok {
			return nil
		}
	}
	return v
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func dropBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
