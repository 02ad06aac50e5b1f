package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/specialistvlad/dokdo/internal/ctxlog"
)

const shutdownTimeout = 5 * time.Second

// previewHandler serves the source directory. Templates are compiled on every
// request so edits show up on reload; other files are served as they are.
func (a *App) previewHandler(ctx context.Context) http.Handler {
	logger := ctxlog.FromContext(ctx)
	files := http.FileServer(http.Dir(a.config.SourceDir))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "..") {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		name := path.Clean(r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/") {
			name = path.Join(name, "index.html")
		}
		if !strings.HasSuffix(name, ".html") {
			files.ServeHTTP(w, r)
			return
		}

		src := filepath.Join(a.config.SourceDir, filepath.FromSlash(strings.TrimPrefix(name, "/")))
		doc, err := a.compiler.Compile(r.Context(), src, a.config.Variables)
		if err != nil {
			logger.Error("Preview compile failed.", "source", src, "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		logger.Debug("Preview compiled.", "source", src)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, doc)
	})
	return mux
}

// serve runs the preview server until ctx is canceled, then shuts it down
// gracefully.
func (a *App) serve(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Configuring preview server.")

	ln, err := net.Listen("tcp", a.config.ServeAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.config.ServeAddr, err)
	}

	a.httpServer = &http.Server{
		Handler:           a.previewHandler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🔎 Preview server starting", "address", "http://"+ln.Addr().String())
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("preview server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	return a.closePreviewServer()
}

func (a *App) closePreviewServer() error {
	if a.httpServer == nil {
		a.logger.Debug("Preview server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("Shutting down preview server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Preview server shutdown failed", "error", err)
		return err
	}
	a.logger.Debug("Preview server shut down gracefully.")
	return nil
}
