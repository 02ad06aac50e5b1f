// Package config defines the format-agnostic model of a project file along
// with the Loader interface that produces it.
//
// `config.Project` is what the app merges with command-line flags before a
// compile run. Concrete loaders, such as the HCL one, live in separate
// packages.
package config
