package compiler

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/dokdo/internal/ctxlog"
	"github.com/specialistvlad/dokdo/internal/markup"
	"github.com/specialistvlad/dokdo/internal/style"
	"golang.org/x/net/html"
)

// flatten hoists everything in statics into the outermost document and
// serializes it. All styles become one <style> appended to <head>; post
// statics are appended to <body> and pre statics to <head>, path by path in
// first-seen order.
//
// A fragment with nothing to hoist is serialized as is. A full document must
// have both <head> and <body>.
func (c *Compiler) flatten(ctx context.Context, path string, roots []*html.Node, statics *Statics) (string, error) {
	isDocument := len(roots) == 1 && roots[0].Type == html.DocumentNode
	if !isDocument && statics.Empty() {
		return markup.RenderAll(roots)
	}

	head := markup.FindFirst(roots, "head")
	if head == nil {
		return "", &MissingNodeError{Path: path, Tag: "head"}
	}
	body := markup.FindFirst(roots, "body")
	if body == nil {
		return "", &MissingNodeError{Path: path, Tag: "body"}
	}

	var css strings.Builder
	for _, p := range statics.Paths() {
		for _, n := range statics.Entry(p).Styles {
			text, err := markup.RenderInner(n)
			if err != nil {
				return "", fmt.Errorf("template %s: %w", p, err)
			}
			if typ, _ := markup.Attr(n, "type"); style.IsDialect(typ) {
				if text, err = c.transpiler.Transpile(ctx, text); err != nil {
					return "", fmt.Errorf("template %s: %w", p, err)
				}
			}
			css.WriteString(text)
		}
	}
	// No empty <style>, so a document without directives renders unchanged.
	if css.Len() > 0 {
		sheet := markup.NewElement("style")
		sheet.AppendChild(markup.NewText(css.String()))
		head.AppendChild(sheet)
	}

	hoisted := 0
	for _, p := range statics.Paths() {
		e := statics.Entry(p)
		for _, n := range e.Post {
			body.AppendChild(n)
		}
		for _, n := range e.Pre {
			head.AppendChild(n)
		}
		hoisted += len(e.Post) + len(e.Pre)
	}
	ctxlog.FromContext(ctx).Debug("Statics hoisted.", "paths", len(statics.Paths()), "css_bytes", css.Len(), "statics", hoisted)

	return markup.RenderAll(roots)
}
