// Package hclutil holds small HCL helpers shared by configuration loaders.
package hclutil

import (
	"github.com/hashicorp/hcl/v2"
)

// FindUniqueBlock returns the block of the given type from blocks. It reports
// a diagnostic for every repeated occurrence and returns nil when there is
// none.
func FindUniqueBlock(blocks hcl.Blocks, name string) (*hcl.Block, hcl.Diagnostics) {
	var found *hcl.Block
	var diags hcl.Diagnostics

	for _, block := range blocks.OfType(name) {
		if found != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate \"" + name + "\" block",
				Detail:   "Only one \"" + name + "\" block is allowed; the first one is at " + found.DefRange.String() + ".",
				Subject:  block.DefRange.Ptr(),
			})
			continue
		}
		found = block
	}

	return found, diags
}
