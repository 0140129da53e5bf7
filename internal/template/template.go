// Package template compiles and renders the user-editable page template.
//
// The grammar is deliberately small: variable references, loops over a named
// sequence, and presence conditionals. There is no expression evaluation, so
// rendering is total and side-effect free; the only failure mode is a
// malformed template, caught at compile time.
//
//	{{ name }}            variable (dotted paths allowed: {{ highlight.text }})
//	{% for x in seq %}    loop, closed by {% endfor %}
//	{% if name %}         conditional, closed by {% endif %}
package template

import (
	"fmt"
	"strings"
)

// SyntaxError reports a malformed template with its source position.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template:%d:%d: %s", e.Line, e.Col, e.Msg)
}

// Template is a compiled template, ready to render any number of times.
type Template struct {
	nodes []node
}

type node interface{ isNode() }

// textNode is literal text passed through byte-exact.
type textNode struct {
	text string
}

// varNode emits the string form of a context value; absent renders empty.
type varNode struct {
	path []string
}

// forNode iterates a sequence, re-binding loopVar for each element.
type forNode struct {
	loopVar string
	seq     []string
	body    []node
}

// ifNode renders its body only when the referenced value is truthy.
type ifNode struct {
	path []string
	body []node
}

func (textNode) isNode() {}
func (varNode) isNode()  {}
func (forNode) isNode()  {}
func (ifNode) isNode()   {}

const (
	tokText = iota
	tokVar
	tokTag
)

type token struct {
	kind int
	text string // literal text, or trimmed marker contents
	line int
	col  int
}

// Compile parses templateSource into a Template. It fails with *SyntaxError
// when a marker is unterminated, a tag is unknown, or a block is left open.
func Compile(templateSource string) (*Template, error) {
	toks, err := lex(templateSource)
	if err != nil {
		return nil, err
	}
	nodes, rest, err := parse(toks, nil)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		t := rest[0]
		return nil, &SyntaxError{Line: t.line, Col: t.col, Msg: fmt.Sprintf("unexpected {%% %s %%}", t.text)}
	}
	return &Template{nodes: nodes}, nil
}

// lex splits source into literal text and {{ }} / {% %} markers, tracking
// line and column for error reporting.
func lex(src string) ([]token, error) {
	var toks []token
	line, col := 1, 1

	advance := func(s string) {
		for _, r := range s {
			if r == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
	}

	for len(src) > 0 {
		iv := strings.Index(src, "{{")
		it := strings.Index(src, "{%")
		next, closer, kind := iv, "}}", tokVar
		if it != -1 && (iv == -1 || it < iv) {
			next, closer, kind = it, "%}", tokTag
		}
		if next == -1 {
			toks = append(toks, token{kind: tokText, text: src, line: line, col: col})
			break
		}
		if next > 0 {
			toks = append(toks, token{kind: tokText, text: src[:next], line: line, col: col})
			advance(src[:next])
			src = src[next:]
		}
		markerLine, markerCol := line, col
		end := strings.Index(src[2:], closer)
		if end == -1 {
			return nil, &SyntaxError{Line: markerLine, Col: markerCol, Msg: fmt.Sprintf("unterminated %q marker", src[:2])}
		}
		inner := strings.TrimSpace(src[2 : 2+end])
		if inner == "" {
			return nil, &SyntaxError{Line: markerLine, Col: markerCol, Msg: "empty marker"}
		}
		toks = append(toks, token{kind: kind, text: inner, line: markerLine, col: markerCol})
		advance(src[:2+end+len(closer)])
		src = src[2+end+len(closer):]
	}
	return toks, nil
}

// parse consumes tokens until it hits an end tag belonging to an enclosing
// block (returned unconsumed) or runs out of input. open is the block tag
// awaiting its terminator, nil at top level.
func parse(toks []token, open *token) ([]node, []token, error) {
	var nodes []node
	for len(toks) > 0 {
		t := toks[0]
		switch t.kind {
		case tokText:
			nodes = append(nodes, textNode{text: t.text})
			toks = toks[1:]

		case tokVar:
			nodes = append(nodes, varNode{path: strings.Split(t.text, ".")})
			toks = toks[1:]

		case tokTag:
			fields := strings.Fields(t.text)
			switch fields[0] {
			case "for":
				if len(fields) != 4 || fields[2] != "in" {
					return nil, nil, &SyntaxError{Line: t.line, Col: t.col, Msg: fmt.Sprintf("malformed for tag %q, want {%% for x in seq %%}", t.text)}
				}
				body, rest, err := parse(toks[1:], &t)
				if err != nil {
					return nil, nil, err
				}
				if len(rest) == 0 || rest[0].text != "endfor" {
					return nil, nil, &SyntaxError{Line: t.line, Col: t.col, Msg: "unterminated for block"}
				}
				nodes = append(nodes, forNode{
					loopVar: fields[1],
					seq:     strings.Split(fields[3], "."),
					body:    body,
				})
				toks = rest[1:]

			case "if":
				if len(fields) != 2 {
					return nil, nil, &SyntaxError{Line: t.line, Col: t.col, Msg: fmt.Sprintf("malformed if tag %q, want {%% if name %%}", t.text)}
				}
				body, rest, err := parse(toks[1:], &t)
				if err != nil {
					return nil, nil, err
				}
				if len(rest) == 0 || rest[0].text != "endif" {
					return nil, nil, &SyntaxError{Line: t.line, Col: t.col, Msg: "unterminated if block"}
				}
				nodes = append(nodes, ifNode{
					path: strings.Split(fields[1], "."),
					body: body,
				})
				toks = rest[1:]

			case "endfor", "endif":
				if open == nil {
					return nil, nil, &SyntaxError{Line: t.line, Col: t.col, Msg: fmt.Sprintf("{%% %s %%} without an open block", fields[0])}
				}
				// Let the enclosing block verify it matches.
				return nodes, toks, nil

			default:
				return nil, nil, &SyntaxError{Line: t.line, Col: t.col, Msg: fmt.Sprintf("unknown tag %q", fields[0])}
			}
		}
	}
	return nodes, nil, nil
}
