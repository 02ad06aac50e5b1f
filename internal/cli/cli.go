package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/specialistvlad/dokdo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// varFlag collects repeated -var name=value flags.
type varFlag map[string]string

func (v varFlag) String() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+v[k])
	}
	return strings.Join(parts, ",")
}

func (v varFlag) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return errors.New("expected name=value")
	}
	v[name] = value
	return nil
}

// listFlag collects a repeated string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(s string) error {
	*l = append(*l, s)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Only flags that were set explicitly are copied into the Config, so values
// from a project file can fill the rest.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("dokdo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
dokdo - A static HTML template compiler.

Usage:
  dokdo [options] [FILE]

Arguments:
  FILE
    Compile a single template and print the result to stdout.

Without FILE or -src, every .html file under the source directory is
compiled into the output directory.

Options:
`)
		flagSet.PrintDefaults()
	}

	var (
		source, out, sourceDir, outDir string
		vars                           = varFlag{}
		includePaths                   listFlag
	)
	flagSet.StringVar(&source, "src", "", "Source template to compile.")
	flagSet.StringVar(&source, "c", "", "Source template to compile (shorthand).")
	flagSet.StringVar(&out, "out", app.DefaultOut, "Output path for -src.")
	flagSet.StringVar(&out, "o", app.DefaultOut, "Output path for -src (shorthand).")
	flagSet.StringVar(&sourceDir, "srcdir", app.DefaultSourceDir, "Source directory compiled when no template is given.")
	flagSet.StringVar(&sourceDir, "C", app.DefaultSourceDir, "Source directory (shorthand).")
	flagSet.StringVar(&outDir, "outdir", app.DefaultOutDir, "Output directory for directory mode. Files are written flat by basename.")
	flagSet.StringVar(&outDir, "O", app.DefaultOutDir, "Output directory (shorthand).")
	projectFlag := flagSet.String("config", "", "Path to an HCL project file.")
	flagSet.Var(vars, "var", "Template variable as name=value. Repeatable.")
	workersFlag := flagSet.Int("workers", app.DefaultWorkers, "Number of templates compiled concurrently in directory mode.")
	keepGoingFlag := flagSet.Bool("keep-going", false, "In directory mode, compile every template and report all failures.")
	sassFlag := flagSet.String("sass-binary", "", "Path to the Dart Sass executable. Defaults to 'sass' on PATH.")
	styleOutputFlag := flagSet.String("style-output", "expanded", "SCSS output style. Options: 'expanded' or 'compressed'.")
	flagSet.Var(&includePaths, "sass-include", "SCSS load path. Repeatable.")
	serveFlag := flagSet.String("serve", "", "Serve the source directory on this address, compiling on every request.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	versionFlag := flagSet.Bool("version", false, "Print the version and exit.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if *versionFlag {
		fmt.Fprintf(output, "dokdo %s\n", app.Version)
		return nil, true, nil
	}

	set := map[string]bool{}
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := app.Config{
		ProjectFile:  *projectFlag,
		KeepGoing:    *keepGoingFlag,
		SassBinary:   *sassFlag,
		IncludePaths: includePaths,
		ServeAddr:    *serveFlag,
	}
	if len(vars) > 0 {
		cfg.Variables = vars
	}
	if set["src"] || set["c"] {
		cfg.Source = source
	}
	if set["out"] || set["o"] {
		cfg.Out = out
	}
	if set["srcdir"] || set["C"] {
		cfg.SourceDir = sourceDir
	}
	if set["outdir"] || set["O"] {
		cfg.OutDir = outDir
	}
	if set["workers"] {
		if *workersFlag < 1 {
			return nil, false, &ExitError{Code: 2, Message: "invalid workers: must be at least 1"}
		}
		cfg.Workers = *workersFlag
	}
	if set["style-output"] {
		cfg.StyleOutput = strings.ToLower(*styleOutputFlag)
	}

	switch flagSet.NArg() {
	case 0:
	case 1:
		if cfg.Source != "" {
			return nil, false, &ExitError{Code: 2, Message: "a FILE argument cannot be combined with -src"}
		}
		cfg.Source = flagSet.Arg(0)
		if cfg.Out == "" {
			cfg.Out = app.Stdout
		}
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("expected at most one FILE argument, got %d", flagSet.NArg())}
	}
	slog.Debug("Source determined.", "source", cfg.Source, "source_dir", cfg.SourceDir)

	cfg.LogFormat = strings.ToLower(*logFormatFlag)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	cfg.LogLevel = strings.ToLower(*logLevelFlag)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return config, false, nil
}
