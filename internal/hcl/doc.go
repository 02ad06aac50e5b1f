// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It parses a project file, evaluates its expressions against the
// process environment and translates the result into config.Project.
package hcl
