package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/specialistvlad/dokdo/internal/ctxlog"
	"github.com/specialistvlad/dokdo/internal/fsutil"
	"golang.org/x/sync/errgroup"
)

// Run executes the mode selected by the configuration: the preview server,
// a single source file, or every template of the source directory.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	var err error
	switch {
	case a.config.ServeAddr != "":
		err = a.serve(ctx)
	case a.config.Source != "":
		err = a.compileFile(ctx, a.config.Source, a.config.Out)
	default:
		err = a.compileDir(ctx)
	}

	a.logger.Debug("App.Run method finished.", "failed", err != nil)
	return err
}

// compileFile compiles src and writes it to out, or to the output writer
// when out is Stdout.
func (a *App) compileFile(ctx context.Context, src, out string) error {
	logger := ctxlog.FromContext(ctx).With("source", src)
	start := time.Now()

	doc, err := a.compiler.Compile(ctx, src, a.config.Variables)
	if err != nil {
		return fmt.Errorf("failed to compile %s: %w", src, err)
	}

	if out == Stdout {
		if _, err := io.WriteString(a.outW, doc); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		logger.Debug("Template compiled to output stream.", "duration", time.Since(start))
		return nil
	}

	if err := fsutil.WriteFile(out, []byte(doc)); err != nil {
		return err
	}
	logger.Info("Template compiled.", "out", out, "bytes", len(doc), "duration", time.Since(start))
	return nil
}

// compileDir compiles every template under the source directory into the
// output directory on a bounded worker pool. Without KeepGoing the first
// failure cancels the remaining work.
func (a *App) compileDir(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	cfg := a.config

	sources, err := fsutil.FindFilesByExtension(cfg.SourceDir, ".html", cfg.Exclude...)
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}
	if len(sources) == 0 {
		logger.Warn("No templates found, nothing to compile.", "source_dir", cfg.SourceDir)
		return nil
	}
	seen := make(map[string]string, len(sources))
	for _, src := range sources {
		out := fsutil.FlatOutputPath(cfg.OutDir, src)
		if prev, ok := seen[out]; ok {
			logger.Warn("Templates share an output file, the last one written wins.", "out", out, "first", prev, "second", src)
		}
		seen[out] = src
	}
	logger.Info("🚀 Compiling templates...", "count", len(sources), "workers", cfg.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	var (
		mu     sync.Mutex
		failed []error
	)
	for _, src := range sources {
		src := src
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			err := a.compileFile(gctx, src, fsutil.FlatOutputPath(cfg.OutDir, src))
			if err == nil {
				return nil
			}
			if !cfg.KeepGoing {
				return err
			}
			logger.Error("Template failed, continuing.", "source", src, "error", err)
			mu.Lock()
			failed = append(failed, err)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d templates failed: %w", len(failed), len(sources), errors.Join(failed...))
	}

	logger.Info("🏁 Compilation finished.", "count", len(sources), "out_dir", cfg.OutDir)
	return nil
}
