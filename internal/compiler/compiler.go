// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package compiler turns a template file into a finished HTML document.
//
// Compilation is a recursion over template paths. Each call reads and
// parses one template, pulls its <style> and <static> elements into an
// accumulator shared by the whole recursion, replaces every <import> with the
// compiled roots of the imported template and fills <innerhtml> slots with
// the content supplied at the import site. Only the outermost call hoists the
// accumulated styles and statics into <head> and <body> and serializes the
// result.
//
// There is no cycle detection: a template that imports itself recurses until
// the stack or the context gives out.
package compiler

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/dokdo/internal/ctxlog"
	"github.com/specialistvlad/dokdo/internal/markup"
	"github.com/specialistvlad/dokdo/internal/style"
	"github.com/specialistvlad/dokdo/internal/variables"
	"golang.org/x/net/html"
)

// Variables maps placeholder names to their substitution values.
type Variables map[string]string

// Option configures a Compiler.
type Option func(*Compiler)

// WithTranspiler sets the SCSS transpiler used for `text/scss` style blocks.
func WithTranspiler(t style.Transpiler) Option {
	return func(c *Compiler) { c.transpiler = t }
}

// WithReadFile replaces os.ReadFile as the template source.
func WithReadFile(fn func(path string) ([]byte, error)) Option {
	return func(c *Compiler) { c.readFile = fn }
}

// Compiler compiles template files. It holds no per-compile state and may
// be used for concurrent Compile calls if its transpiler allows it.
type Compiler struct {
	transpiler style.Transpiler
	readFile   func(path string) ([]byte, error)
}

// New creates a Compiler. Without WithTranspiler, SCSS blocks fail to compile.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		transpiler: style.Unavailable,
		readFile:   os.ReadFile,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// unit is one invocation of the recursion.
type unit struct {
	path     string
	importer string // empty for the outermost template
	vars     Variables
	supplied []*html.Node
	statics  *Statics
}

// Compile compiles the template at path with vars as its variables and
// returns the serialized document.
func (c *Compiler) Compile(ctx context.Context, path string, vars Variables) (string, error) {
	if vars == nil {
		vars = Variables{}
	}
	statics := NewStatics()
	roots, err := c.compile(ctx, &unit{path: path, vars: vars, statics: statics})
	if err != nil {
		return "", err
	}
	return c.flatten(ctx, path, roots, statics)
}

func (c *Compiler) compile(ctx context.Context, u *unit) ([]*html.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx = ctxlog.With(ctx, "template", u.path)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Compiling template.", "importer", u.importer, "supplied", len(u.supplied))

	raw, err := c.readFile(u.path)
	if err != nil {
		if u.importer != "" {
			return nil, &ImportNotFoundError{From: u.importer, Target: u.path, Err: err}
		}
		return nil, fmt.Errorf("failed to read template %s: %w", u.path, err)
	}

	text, err := variables.Substitute(string(raw), u.vars)
	if err != nil {
		return nil, &TemplateError{Path: u.path, Err: err}
	}

	roots, err := markup.Parse(text)
	if err != nil {
		return nil, &TemplateError{Path: u.path, Err: err}
	}
	logger.Debug("Template parsed.", "roots", len(roots))

	roots, entry, err := extract(u.path, roots)
	if err != nil {
		return nil, err
	}
	if !u.statics.Has(u.path) {
		if err := c.transpileStyles(ctx, u.path, entry.Styles); err != nil {
			return nil, err
		}
		u.statics.Record(u.path, entry)
		logger.Debug("Statics recorded.", "styles", len(entry.Styles), "post", len(entry.Post), "pre", len(entry.Pre))
	}

	roots, err = c.resolveImports(ctx, u, roots)
	if err != nil {
		return nil, err
	}

	fillSlots(ctx, roots, u.supplied)
	return roots, nil
}
