package compiler

import (
	"context"

	"github.com/specialistvlad/dokdo/internal/ctxlog"
	"github.com/specialistvlad/dokdo/internal/markup"
	"golang.org/x/net/html"
)

// slotKey identifies an <innerhtml> slot: by its id when it has one,
// otherwise by position.
type slotKey struct {
	id    string
	named bool
	index int
}

func keyOf(n *html.Node, index int) slotKey {
	if id, ok := markup.Attr(n, "id"); ok {
		return slotKey{id: id, named: true}
	}
	return slotKey{index: index}
}

// fillSlots replaces each nested <innerhtml> with the supplied node of the
// same key, overlaying the slot's attributes onto it. Supplied comments take
// a position like elements do. Slots without a
// matching node are removed. Top-level <innerhtml> roots are not slots.
func fillSlots(ctx context.Context, roots []*html.Node, supplied []*html.Node) {
	slots := make(map[slotKey]*html.Node, len(supplied))
	for i, n := range supplied {
		slots[keyOf(n, i)] = n
	}

	var targets []*html.Node
	for _, root := range roots {
		targets = append(targets, markup.Descendants(root, "innerhtml")...)
	}
	if len(targets) == 0 {
		return
	}

	filled := 0
	for i, target := range targets {
		n, ok := slots[keyOf(target, i)]
		if !ok {
			markup.Detach(target)
			continue
		}
		markup.Overlay(n, target.Attr)
		markup.Replace(target, n)
		filled++
	}
	ctxlog.FromContext(ctx).Debug("Innerhtml slots resolved.", "slots", len(targets), "filled", filled)
}
