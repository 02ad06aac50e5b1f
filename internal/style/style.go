// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package style turns SCSS style blocks into plain CSS. The compiler only
// depends on the Transpiler interface; Sass is the production implementation
// backed by the Dart Sass embedded protocol.
package style

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bep/godartsass/v2"
	"github.com/specialistvlad/dokdo/internal/ctxlog"
)

const (
	// TypeCSS is the default type of a <style> block.
	TypeCSS = "text/css"
	// TypeSCSS marks a <style> block that must be transpiled.
	TypeSCSS = "text/scss"
)

// IsDialect reports whether a <style> type attribute names the SCSS dialect.
func IsDialect(typ string) bool {
	return strings.EqualFold(strings.TrimSpace(typ), TypeSCSS)
}

// Transpiler converts SCSS source into CSS.
type Transpiler interface {
	Transpile(ctx context.Context, src string) (string, error)
}

// Func adapts a plain function to the Transpiler interface.
type Func func(ctx context.Context, src string) (string, error)

// Transpile calls f.
func (f Func) Transpile(ctx context.Context, src string) (string, error) {
	return f(ctx, src)
}

// Unavailable is a Transpiler that fails every call. It is used when SCSS
// support has been switched off.
var Unavailable Transpiler = Func(func(context.Context, string) (string, error) {
	return "", errors.New("scss support is not configured")
})

// SassConfig configures the Dart Sass transpiler.
type SassConfig struct {
	// Binary is the path to the Dart Sass executable. Empty means "sass" on PATH.
	Binary string
	// OutputStyle is "expanded" or "compressed".
	OutputStyle  string
	IncludePaths []string
	Timeout      time.Duration
}

// Sass transpiles SCSS with Dart Sass. The Dart Sass process is started on
// the first Transpile call, so a project without SCSS never needs the binary.
// Sass is safe for concurrent use.
type Sass struct {
	cfg SassConfig

	once     sync.Once
	mu       sync.Mutex
	t        *godartsass.Transpiler
	startErr error
}

// NewSass creates a lazily started Sass transpiler.
func NewSass(cfg SassConfig) *Sass {
	return &Sass{cfg: cfg}
}

func (s *Sass) start(ctx context.Context) (*godartsass.Transpiler, error) {
	s.once.Do(func() {
		logger := ctxlog.FromContext(ctx)
		logger.Debug("Starting Dart Sass.", "binary", s.cfg.Binary)
		t, err := godartsass.Start(godartsass.Options{
			DartSassEmbeddedFilename: s.cfg.Binary,
			Timeout:                  s.cfg.Timeout,
			LogEventHandler: func(e godartsass.LogEvent) {
				logger.Warn("Dart Sass message.", "message", e.Message)
			},
		})
		s.mu.Lock()
		s.t, s.startErr = t, err
		s.mu.Unlock()
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return nil, fmt.Errorf("failed to start dart sass: %w", s.startErr)
	}
	if s.t == nil {
		return nil, errors.New("sass transpiler is closed")
	}
	return s.t, nil
}

// Transpile compiles src as SCSS.
func (s *Sass) Transpile(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t, err := s.start(ctx)
	if err != nil {
		return "", err
	}
	res, err := t.Execute(godartsass.Args{
		Source:       src,
		SourceSyntax: godartsass.SourceSyntaxSCSS,
		OutputStyle:  godartsass.ParseOutputStyle(s.cfg.OutputStyle),
		IncludePaths: s.cfg.IncludePaths,
	})
	if err != nil {
		return "", fmt.Errorf("scss transpile failed: %w", err)
	}
	return res.CSS, nil
}

// Close stops the Dart Sass process if it was started.
func (s *Sass) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t == nil {
		return nil
	}
	err := s.t.Close()
	s.t = nil
	return err
}
