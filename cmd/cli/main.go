package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/dokdo/internal/app"
	"github.com/specialistvlad/dokdo/internal/cli"
	"github.com/specialistvlad/dokdo/internal/hcl"
)

// main is the entrypoint for the dokdo application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	dokdo, err := app.NewApp(outW, errW, cfg, hcl.NewLoader())
	if err != nil {
		return err
	}
	defer func() {
		if err := dokdo.Close(); err != nil {
			slog.Warn("Failed to stop the SCSS transpiler.", "error", err)
		}
	}()

	return dokdo.Run(ctx)
}
