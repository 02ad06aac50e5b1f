package hcl

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/dokdo/internal/config"
	"github.com/specialistvlad/dokdo/internal/hclutil"
)

// translate converts the decoded HCL structures into the agnostic model.
func (l *Loader) translate(path string, root *projectFile, style *styleBlock, evalCtx *hcl.EvalContext) (*config.Project, error) {
	p := &config.Project{
		Path:    path,
		Exclude: root.Exclude,
	}
	base := filepath.Dir(path)
	if root.SourceDir != nil {
		p.SourceDir = relativeTo(base, *root.SourceDir)
	}
	if root.OutDir != nil {
		p.OutDir = relativeTo(base, *root.OutDir)
	}
	if root.Workers != nil {
		if *root.Workers < 1 {
			return nil, fmt.Errorf("project file %s: workers must be at least 1, got %d", path, *root.Workers)
		}
		p.Workers = *root.Workers
	}

	if root.Variables != nil {
		val, diags := root.Variables.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("project file %s: failed to evaluate variables: %w", path, diags)
		}
		vars, err := hclutil.ToStringMap(val)
		if err != nil {
			return nil, fmt.Errorf("project file %s: variables: %w", path, err)
		}
		p.Variables = vars
	}

	if style != nil {
		switch style.OutputStyle {
		case "", "expanded", "compressed":
		default:
			return nil, fmt.Errorf("project file %s: output_style must be 'expanded' or 'compressed', got %q", path, style.OutputStyle)
		}
		p.Style = &config.Style{
			OutputStyle: style.OutputStyle,
		}
		// A bare command name is looked up on PATH; anything with a
		// separator is a path relative to the project file.
		if strings.ContainsRune(style.SassBinary, filepath.Separator) {
			p.Style.SassBinary = relativeTo(base, style.SassBinary)
		} else {
			p.Style.SassBinary = style.SassBinary
		}
		for _, dir := range style.IncludePaths {
			p.Style.IncludePaths = append(p.Style.IncludePaths, relativeTo(base, dir))
		}
	}
	return p, nil
}

// relativeTo resolves a relative path against the project file's directory.
func relativeTo(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
