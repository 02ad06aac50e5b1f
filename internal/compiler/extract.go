package compiler

import (
	"context"
	"fmt"

	"github.com/specialistvlad/dokdo/internal/markup"
	"github.com/specialistvlad/dokdo/internal/style"
	"golang.org/x/net/html"
)

func isStatic(n *html.Node) bool {
	return markup.IsElement(n, "static") && (markup.HasAttr(n, "pre") || markup.HasAttr(n, "post"))
}

// collect detaches every node matching match from the forest and returns
// them in document order. Matched nodes are not searched further.
func collect(roots []*html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	for _, root := range roots {
		markup.Walk(root, func(n *html.Node) bool {
			if !match(n) {
				return true
			}
			found = append(found, n)
			markup.Detach(n)
			return false
		})
	}
	return found
}

// extract removes <style> elements and <static pre|post> elements from the
// forest. Styles are collected first, so a style nested in a static is hoisted
// as a style. Top-level <style> and <static> roots are dropped from the
// returned forest; a top-level <static> with neither marker goes with them.
func extract(path string, roots []*html.Node) ([]*html.Node, *Entry, error) {
	e := &Entry{}
	e.Styles = collect(roots, func(n *html.Node) bool { return markup.IsElement(n, "style") })

	for _, n := range collect(roots, isStatic) {
		pre, post := markup.HasAttr(n, "pre"), markup.HasAttr(n, "post")
		switch {
		case pre && post:
			return nil, nil, &StaticPlacementError{Path: path}
		case post:
			e.Post = append(e.Post, n)
		default:
			e.Pre = append(e.Pre, n)
		}
	}

	kept := make([]*html.Node, 0, len(roots))
	for _, root := range roots {
		if markup.IsElement(root, "style") || markup.IsElement(root, "static") {
			continue
		}
		kept = append(kept, root)
	}
	return kept, e, nil
}

// transpileStyles rewrites SCSS style blocks to CSS in place and retags them
// as text/css so they are never transpiled twice.
func (c *Compiler) transpileStyles(ctx context.Context, path string, styles []*html.Node) error {
	for _, n := range styles {
		typ, _ := markup.Attr(n, "type")
		if !style.IsDialect(typ) {
			continue
		}
		src, err := markup.RenderInner(n)
		if err != nil {
			return fmt.Errorf("template %s: %w", path, err)
		}
		css, err := c.transpiler.Transpile(ctx, src)
		if err != nil {
			return fmt.Errorf("template %s: %w", path, err)
		}
		for n.FirstChild != nil {
			n.RemoveChild(n.FirstChild)
		}
		n.AppendChild(markup.NewText(css))
		markup.SetAttr(n, "type", style.TypeCSS)
	}
	return nil
}
