package compiler

import (
	"errors"
	"fmt"
)

var errMissingImportPath = errors.New("import element has no path attribute")

// TemplateError attaches the template path to a failure that happened while
// substituting or parsing that template.
type TemplateError struct {
	Path string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Path, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// ImportNotFoundError is returned when an <import> target cannot be read.
type ImportNotFoundError struct {
	From   string
	Target string
	Err    error
}

func (e *ImportNotFoundError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("import in %s: %v", e.From, e.Err)
	}
	return fmt.Sprintf("import %q in %s not found: %v", e.Target, e.From, e.Err)
}

func (e *ImportNotFoundError) Unwrap() error {
	return e.Err
}

// MissingNodeError is returned when the final document has no <head> or
// <body> to receive hoisted styles and statics.
type MissingNodeError struct {
	Path string
	Tag  string
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("template %s: no <%s> element to receive styles and statics", e.Path, e.Tag)
}

// StaticPlacementError is returned for a <static> element marked both pre
// and post.
type StaticPlacementError struct {
	Path string
}

func (e *StaticPlacementError) Error() string {
	return fmt.Sprintf("template %s: <static> cannot be both pre and post", e.Path)
}
