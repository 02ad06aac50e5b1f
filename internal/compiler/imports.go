package compiler

import (
	"context"
	"path/filepath"

	"github.com/specialistvlad/dokdo/internal/ctxlog"
	"github.com/specialistvlad/dokdo/internal/markup"
	"golang.org/x/net/html"
)

// resolveImports replaces every <import> in the forest, top-level or nested,
// with the compiled roots of its target. Imports are collected up front in
// document order; an import nested inside another import's content is still
// resolved after that content has been moved into the imported tree.
func (c *Compiler) resolveImports(ctx context.Context, u *unit, roots []*html.Node) ([]*html.Node, error) {
	var imports []*html.Node
	for _, root := range roots {
		markup.Walk(root, func(n *html.Node) bool {
			if markup.IsElement(n, "import") {
				imports = append(imports, n)
			}
			return true
		})
	}
	if len(imports) == 0 {
		return roots, nil
	}
	ctxlog.FromContext(ctx).Debug("Resolving imports.", "count", len(imports))

	for _, imp := range imports {
		rel, ok := markup.Attr(imp, "path")
		if !ok || rel == "" {
			return nil, &ImportNotFoundError{From: u.path, Err: errMissingImportPath}
		}

		sub, err := c.compile(ctx, &unit{
			path:     filepath.Join(filepath.Dir(u.path), rel),
			importer: u.path,
			vars:     markup.AttrMap(imp),
			supplied: markup.ContentChildren(imp),
			statics:  u.statics,
		})
		if err != nil {
			return nil, err
		}

		var nodes []*html.Node
		for _, n := range sub {
			nodes = append(nodes, markup.Unwrap(n)...)
		}
		if len(nodes) == 1 && nodes[0].Type == html.ElementNode {
			markup.Overlay(nodes[0], imp.Attr, "path")
		}

		if imp.Parent != nil {
			markup.Replace(imp, nodes...)
			continue
		}
		roots = splice(roots, imp, nodes)
	}
	return roots, nil
}

// splice replaces old in roots with nodes, preserving their order.
func splice(roots []*html.Node, old *html.Node, nodes []*html.Node) []*html.Node {
	for i, n := range roots {
		if n != old {
			continue
		}
		out := make([]*html.Node, 0, len(roots)-1+len(nodes))
		out = append(out, roots[:i]...)
		out = append(out, nodes...)
		return append(out, roots[i+1:]...)
	}
	return roots
}
