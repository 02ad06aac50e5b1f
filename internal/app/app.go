// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/dokdo/internal/compiler"
	"github.com/specialistvlad/dokdo/internal/config"
	"github.com/specialistvlad/dokdo/internal/ctxlog"
	"github.com/specialistvlad/dokdo/internal/style"
)

// Version is the released version of the dokdo binary.
const Version = "0.1"

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	sass     *style.Sass
	compiler *compiler.Compiler

	httpServer *http.Server
}

// NewApp is the constructor for the main application. Compiled output that
// is not written to a file goes to outW and logs go to logW. When
// cfg.ProjectFile is set, loader reads it and its values fill every field
// the caller left unset.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Work on a copy so the caller's config is left untouched.
	merged := *cfg
	if merged.ProjectFile != "" {
		if loader == nil {
			return nil, fmt.Errorf("project file %s given but no loader configured", merged.ProjectFile)
		}
		project, err := loader.Load(ctx, merged.ProjectFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load project file: %w", err)
		}
		merged.merge(project)
		logger.Debug("Project file merged.", "path", project.Path)
	}
	merged.applyDefaults()
	if err := validateStyleOutput(merged.StyleOutput); err != nil {
		return nil, err
	}

	sass := style.NewSass(style.SassConfig{
		Binary:       merged.SassBinary,
		OutputStyle:  merged.StyleOutput,
		IncludePaths: merged.IncludePaths,
	})

	logger.Debug("App configured.",
		"source", merged.Source,
		"source_dir", merged.SourceDir,
		"out_dir", merged.OutDir,
		"workers", merged.Workers,
		"variables", len(merged.Variables),
	)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   &merged,
		sass:     sass,
		compiler: compiler.New(compiler.WithTranspiler(sass)),
	}, nil
}

// Config returns the effective configuration after merging and defaults.
func (a *App) Config() Config {
	return *a.config
}

// Close releases the Dart Sass process, if one was started.
func (a *App) Close() error {
	a.logger.Debug("Closing app.")
	return a.sass.Close()
}
