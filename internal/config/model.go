package config

// Project is the unified, format-agnostic representation of a project file.
// Zero values mean "not set"; the app fills them from flags or defaults.
type Project struct {
	// Path is the file the project was loaded from.
	Path string

	SourceDir string
	OutDir    string
	Workers   int
	// Exclude holds glob patterns matched against paths relative to SourceDir.
	Exclude []string
	// Variables are the root variables of every compiled template.
	Variables map[string]string
	Style     *Style
}

// Style configures SCSS transpilation.
type Style struct {
	SassBinary   string
	OutputStyle  string
	IncludePaths []string
}
