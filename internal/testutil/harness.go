package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/dokdo/internal/app"
	"github.com/specialistvlad/dokdo/internal/hcl"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Root      string // temporary directory holding the test files
	Stdout    string
	LogOutput string
	Err       error
	Config    app.Config // effective configuration; zero if the app failed to start
}

// Path joins a slash-separated name onto the result's root directory.
func (r *HarnessResult) Path(name string) string {
	return filepath.Join(r.Root, filepath.FromSlash(name))
}

// Output returns the content of a file the run was expected to write.
func (r *HarnessResult) Output(t *testing.T, name string) string {
	t.Helper()
	return ReadFile(t, r.Path(name))
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, cfg)
}

// RunIntegrationTestWithContext writes files into a temporary directory,
// resolves the relative paths of cfg against it and runs the full app with
// the HCL project loader.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	root := WriteFiles(t, files)
	for _, p := range []*string{&cfg.Source, &cfg.SourceDir, &cfg.OutDir, &cfg.ProjectFile} {
		*p = under(root, *p)
	}
	if cfg.Out != app.Stdout {
		cfg.Out = under(root, cfg.Out)
	}
	// An unset source directory would otherwise resolve against the
	// working directory of the test binary.
	if cfg.SourceDir == "" && cfg.ProjectFile == "" {
		cfg.SourceDir = under(root, app.DefaultSourceDir)
	}
	if cfg.OutDir == "" && cfg.ProjectFile == "" {
		cfg.OutDir = under(root, app.DefaultOutDir)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}

	stdout := &bytes.Buffer{}
	logBuffer := &SafeBuffer{}
	result := &HarnessResult{Root: root}

	a, err := app.NewApp(stdout, logBuffer, &cfg, hcl.NewLoaderWithEnv([]string{"DOKDO_ENV=test"}))
	if err == nil {
		result.Config = a.Config()
		err = a.Run(ctx)
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}

	if os.Getenv("DOKDO_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	result.Stdout = stdout.String()
	result.LogOutput = logBuffer.String()
	result.Err = err
	return result
}

func under(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, filepath.FromSlash(p))
}
