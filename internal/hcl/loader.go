package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/dokdo/internal/config"
	"github.com/specialistvlad/dokdo/internal/ctxlog"
	"github.com/specialistvlad/dokdo/internal/hclutil"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	environ func() []string
}

// NewLoader creates a new HCL project file loader that exposes the process
// environment to expressions as `env`.
func NewLoader() *Loader {
	return &Loader{environ: os.Environ}
}

// NewLoaderWithEnv creates a loader that exposes the given environment
// entries instead of the process environment.
func NewLoaderWithEnv(environ []string) *Loader {
	return &Loader{environ: func() []string { return environ }}
}

// projectFile is the attribute part of a project file. The style block is
// extracted separately so duplicates can be reported.
type projectFile struct {
	SourceDir *string        `hcl:"source_dir,optional"`
	OutDir    *string        `hcl:"out_dir,optional"`
	Workers   *int           `hcl:"workers,optional"`
	Exclude   []string       `hcl:"exclude,optional"`
	Variables hcl.Expression `hcl:"variables,optional"`
}

type styleBlock struct {
	SassBinary   string   `hcl:"sass_binary,optional"`
	OutputStyle  string   `hcl:"output_style,optional"`
	IncludePaths []string `hcl:"include_paths,optional"`
}

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "style"}},
}

// Load parses the project file at path and translates it into the
// format-agnostic model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Project, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse project file %s: %w", path, diags)
	}

	content, remain, diags := file.Body.PartialContent(rootSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode project file %s: %w", path, diags)
	}
	styleDef, diags := hclutil.FindUniqueBlock(content.Blocks, "style")
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode project file %s: %w", path, diags)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": hclutil.EnvObject(l.environ()),
		},
	}

	var root projectFile
	if diags := gohcl.DecodeBody(remain, evalCtx, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode project file %s: %w", path, diags)
	}

	var style *styleBlock
	if styleDef != nil {
		style = &styleBlock{}
		if diags := gohcl.DecodeBody(styleDef.Body, evalCtx, style); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode style block in %s: %w", path, diags)
		}
	}

	project, err := l.translate(path, &root, style, evalCtx)
	if err != nil {
		return nil, err
	}
	logger.Debug("HCL loading complete.", "variables", len(project.Variables), "has_style", project.Style != nil)
	return project, nil
}
