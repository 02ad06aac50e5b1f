package compiler

import (
	"path/filepath"

	"golang.org/x/net/html"
)

// Entry holds the nodes one template contributed for hoisting, in the order
// they were found.
type Entry struct {
	Styles []*html.Node
	Post   []*html.Node
	Pre    []*html.Node
}

func (e *Entry) empty() bool {
	return len(e.Styles) == 0 && len(e.Post) == 0 && len(e.Pre) == 0
}

// Statics accumulates hoisted nodes per template path across one top-level
// compile. A path is recorded at most once, so a template imported several
// times contributes its styles and statics a single time.
type Statics struct {
	order   []string
	entries map[string]*Entry
}

// NewStatics returns an empty accumulator.
func NewStatics() *Statics {
	return &Statics{entries: make(map[string]*Entry)}
}

func staticsKey(path string) string {
	return filepath.Clean(path)
}

// Has reports whether path has already been recorded.
func (s *Statics) Has(path string) bool {
	_, ok := s.entries[staticsKey(path)]
	return ok
}

// Record stores e under path unless the path is already present. It reports
// whether e was stored.
func (s *Statics) Record(path string, e *Entry) bool {
	key := staticsKey(path)
	if _, ok := s.entries[key]; ok {
		return false
	}
	s.order = append(s.order, key)
	s.entries[key] = e
	return true
}

// Paths returns recorded paths in first-seen order.
func (s *Statics) Paths() []string {
	return s.order
}

// Entry returns the nodes recorded for path, or nil.
func (s *Statics) Entry(path string) *Entry {
	return s.entries[staticsKey(path)]
}

// Empty reports whether no recorded path contributed any node.
func (s *Statics) Empty() bool {
	for _, e := range s.entries {
		if !e.empty() {
			return false
		}
	}
	return true
}
