// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package markup is the adapter between template text and mutable node trees.
// Nodes are *html.Node values from golang.org/x/net/html so that tree surgery
// (detach, insert, replace) and serialization come from one well-tested type.
//
// Parsing deliberately does not follow the browser tree-construction
// algorithm. Templates are fragments full of custom elements (`import`,
// `innerhtml`, `static`) that a browser parser would re-parent or hoist, so the
// tree is built directly from tokenizer output and stays as close to the
// source as possible:
//
//   - self-closing syntax (`<import path="nav.html"/>`) closes any element,
//   - void elements (`br`, `img`, `link`, ...) never receive children,
//   - raw-text elements (`style`, `script`) keep their content verbatim,
//   - a few elements (`li`, `p`, `td`, ...) implicitly close an open sibling
//     of the same name.
package markup

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseError reports markup that cannot be turned into a tree.
type ParseError struct {
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("parse error: %s", e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// closesSameTag lists elements whose start tag implicitly ends an open
// element of the same name, e.g. `<li>a<li>b`.
var closesSameTag = map[atom.Atom]bool{
	atom.Li: true, atom.P: true, atom.Dt: true, atom.Dd: true,
	atom.Option: true, atom.Tr: true, atom.Td: true, atom.Th: true,
}

// IsDocument reports whether text is a full HTML document rather than a
// fragment: it starts with a doctype or an <html> element.
func IsDocument(text string) bool {
	head := strings.TrimSpace(text)
	if len(head) > 9 {
		head = head[:9]
	}
	head = strings.ToLower(head)
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}

// Parse turns text into its root nodes. A full document yields exactly one
// html.DocumentNode; a fragment yields its top-level nodes as a forest of
// parentless siblings. Whitespace-only text between top-level fragment nodes
// is dropped.
func Parse(text string) ([]*html.Node, error) {
	b := &builder{}
	if IsDocument(text) {
		b.doc = &html.Node{Type: html.DocumentNode}
	}
	if err := b.run(text); err != nil {
		return nil, err
	}
	if b.doc != nil {
		return []*html.Node{b.doc}, nil
	}
	return b.roots, nil
}

type builder struct {
	doc   *html.Node
	roots []*html.Node
	open  []*html.Node
	line  int
}

func (b *builder) run(text string) error {
	z := html.NewTokenizer(strings.NewReader(text))
	b.line = 1
	for {
		tt := z.Next()
		raw := z.Raw()
		line := b.line
		b.line += strings.Count(string(raw), "\n")

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return &ParseError{Line: line, Msg: "tokenizer failed", Err: err}
			}
			return nil
		case html.DoctypeToken:
			tok := z.Token()
			b.append(&html.Node{Type: html.DoctypeNode, Data: tok.Data, Attr: tok.Attr})
		case html.CommentToken:
			tok := z.Token()
			b.append(&html.Node{Type: html.CommentNode, Data: tok.Data})
		case html.TextToken:
			tok := z.Token()
			if b.top() == nil && b.doc == nil && strings.TrimSpace(tok.Data) == "" {
				continue
			}
			b.append(&html.Node{Type: html.TextNode, Data: tok.Data})
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if top := b.top(); top != nil && closesSameTag[tok.DataAtom] && top.DataAtom == tok.DataAtom {
				b.pop()
			}
			n := &html.Node{Type: html.ElementNode, Data: tok.Data, DataAtom: tok.DataAtom, Attr: tok.Attr}
			b.append(n)
			if tt == html.StartTagToken && !voidElements[tok.Data] {
				b.open = append(b.open, n)
			}
		case html.EndTagToken:
			tok := z.Token()
			if voidElements[tok.Data] {
				continue
			}
			if !b.closeElement(tok.Data) {
				return &ParseError{Line: line, Msg: fmt.Sprintf("closing tag </%s> has no matching open element", tok.Data)}
			}
		}
	}
}

func (b *builder) top() *html.Node {
	if len(b.open) == 0 {
		return nil
	}
	return b.open[len(b.open)-1]
}

func (b *builder) pop() {
	b.open = b.open[:len(b.open)-1]
}

func (b *builder) append(n *html.Node) {
	switch {
	case b.top() != nil:
		b.top().AppendChild(n)
	case b.doc != nil:
		b.doc.AppendChild(n)
	default:
		b.roots = append(b.roots, n)
	}
}

// closeElement pops the open stack up to and including the innermost element
// named tag. It reports false when no such element is open.
func (b *builder) closeElement(tag string) bool {
	for i := len(b.open) - 1; i >= 0; i-- {
		if b.open[i].Data == tag {
			b.open = b.open[:i]
			return true
		}
	}
	return false
}
