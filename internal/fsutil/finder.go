// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths in
// lexical walk order. Files whose path relative to rootPath matches any of the
// exclude glob patterns are skipped.
func FindFilesByExtension(rootPath string, extension string, exclude ...string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), extension) {
			return nil
		}
		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		excluded, err := matchAny(filepath.ToSlash(rel), exclude)
		if err != nil {
			return err
		}
		if !excluded {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

func matchAny(rel string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		ok, err := filepath.Match(pattern, rel)
		if err != nil {
			return false, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// FlatOutputPath maps a source file to outDir/<basename>. Directory structure
// below the source directory is not preserved.
func FlatOutputPath(outDir, source string) string {
	return filepath.Join(outDir, filepath.Base(source))
}

// WriteFile writes data to path, creating the parent directory if absent.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
