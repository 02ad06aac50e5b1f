package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// IsElement reports whether n is an element with the given tag name.
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// Attr returns the value of the attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether n carries the attribute key, with or without a value.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets key to val on n, replacing an existing value in place.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Overlay copies attrs onto dst, overwriting values dst already has.
// Keys listed in skip are not copied.
func Overlay(dst *html.Node, attrs []html.Attribute, skip ...string) {
next:
	for _, a := range attrs {
		for _, s := range skip {
			if a.Key == s {
				continue next
			}
		}
		SetAttr(dst, a.Key, a.Val)
	}
}

// AttrMap returns the attributes of n as a map.
func AttrMap(n *html.Node) map[string]string {
	m := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		m[a.Key] = a.Val
	}
	return m
}

// Detach removes n from its parent. Parentless nodes are left untouched.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Replace puts nodes in the position old occupies in its parent, preserving
// their order, and removes old. Each replacement is detached from wherever it
// currently lives first. old must have a parent.
func Replace(old *html.Node, nodes ...*html.Node) {
	parent := old.Parent
	for _, n := range nodes {
		Detach(n)
		parent.InsertBefore(n, old)
	}
	parent.RemoveChild(old)
}

// Walk visits n and its descendants in document order. When fn returns false
// the children of that node are skipped. fn may detach the node it is given.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		Walk(c, fn)
		c = next
	}
}

// Descendants returns every element named tag below n in document order,
// excluding n itself.
func Descendants(n *html.Node, tag string) []*html.Node {
	var found []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, func(d *html.Node) bool {
			if IsElement(d, tag) {
				found = append(found, d)
			}
			return true
		})
	}
	return found
}

// FindFirst returns the first element named tag among roots and their
// descendants, or nil.
func FindFirst(roots []*html.Node, tag string) *html.Node {
	var found *html.Node
	for _, root := range roots {
		Walk(root, func(n *html.Node) bool {
			if found != nil {
				return false
			}
			if IsElement(n, tag) {
				found = n
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// ContentChildren returns the element and comment children of n in order.
// Text between them is skipped.
func ContentChildren(n *html.Node) []*html.Node {
	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode || c.Type == html.CommentNode {
			children = append(children, c)
		}
	}
	return children
}

// NewElement creates a detached element.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, Attr: attrs}
}

// NewText creates a detached text node.
func NewText(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

// Unwrap returns the content of a document node as detached nodes, dropping
// its doctype and whitespace-only text around the root element. Any other
// node is returned as is.
func Unwrap(n *html.Node) []*html.Node {
	if n.Type != html.DocumentNode {
		return []*html.Node{n}
	}
	var content []*html.Node
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		switch {
		case c.Type == html.DoctypeNode:
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "":
		default:
			content = append(content, c)
		}
		c = next
	}
	return content
}
