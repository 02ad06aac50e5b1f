// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package variables implements the text-level substitution pass that runs on
// a template before it is parsed. Placeholders have the form `{{{ name }}}`;
// the interior is trimmed and used as the lookup key.
//
// Substitution works on the character stream rather than on the parsed tree
// because placeholders may sit inside attribute values or raw-text elements
// where a tree model would escape or split them.
package variables

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholder = regexp.MustCompile(`\{\{\{([^}]+)\}\}\}`)

// UndefinedVariableError is returned when a template references a name that
// the caller did not supply.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable %q", e.Name)
}

// Substitute replaces every placeholder in text with its value from vars.
// All match offsets are taken from the original text before anything is
// written, and values are inserted verbatim.
func Substitute(text string, vars map[string]string) (string, error) {
	matches := placeholder.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		name := strings.TrimSpace(text[m[2]:m[3]])
		value, ok := vars[name]
		if !ok {
			return "", &UndefinedVariableError{Name: name}
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(value)
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

// Names returns the distinct placeholder names referenced by text in the
// order they first appear.
func Names(text string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
