package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/dokdo/internal/config"
)

// Defaults applied after the project file has been merged.
const (
	DefaultOut       = "a.html"
	DefaultSourceDir = "src"
	DefaultOutDir    = "build"
	DefaultWorkers   = 1
)

// Stdout as Out writes a single compiled file to the app's output writer.
const Stdout = "-"

// Config holds all the necessary configuration for an App instance to run.
// Zero values mean "not set" until the project file and defaults are applied.
type Config struct {
	Source    string // single source template; empty selects directory mode
	Out       string // output path for Source
	SourceDir string
	OutDir    string
	Exclude   []string

	ProjectFile string
	Variables   map[string]string
	Workers     int
	KeepGoing   bool

	SassBinary   string
	StyleOutput  string
	IncludePaths []string

	ServeAddr string

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if err := validateStyleOutput(cfg.StyleOutput); err != nil {
		return nil, err
	}
	if cfg.ServeAddr != "" && cfg.Source != "" {
		return nil, errors.New("a preview server serves a source directory and cannot be combined with a single source file")
	}
	return &cfg, nil
}

func validateStyleOutput(s string) error {
	switch s {
	case "", "expanded", "compressed":
		return nil
	default:
		return fmt.Errorf("invalid style output %q: must be 'expanded' or 'compressed'", s)
	}
}

// merge fills every unset field from the project file. Variables are merged
// per name with explicitly set values winning.
func (c *Config) merge(p *config.Project) {
	if c.SourceDir == "" {
		c.SourceDir = p.SourceDir
	}
	if c.OutDir == "" {
		c.OutDir = p.OutDir
	}
	if c.Workers == 0 {
		c.Workers = p.Workers
	}
	if len(c.Exclude) == 0 {
		c.Exclude = p.Exclude
	}
	if len(p.Variables) > 0 {
		vars := make(map[string]string, len(p.Variables)+len(c.Variables))
		for k, v := range p.Variables {
			vars[k] = v
		}
		for k, v := range c.Variables {
			vars[k] = v
		}
		c.Variables = vars
	}
	if p.Style != nil {
		if c.SassBinary == "" {
			c.SassBinary = p.Style.SassBinary
		}
		if c.StyleOutput == "" {
			c.StyleOutput = p.Style.OutputStyle
		}
		if len(c.IncludePaths) == 0 {
			c.IncludePaths = p.Style.IncludePaths
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Out == "" {
		c.Out = DefaultOut
	}
	if c.SourceDir == "" {
		c.SourceDir = DefaultSourceDir
	}
	if c.OutDir == "" {
		c.OutDir = DefaultOutDir
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
}
