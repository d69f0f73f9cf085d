package tabular

import (
	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/rules"
)

// Prepare runs header promotion, column mapping and the vendor preamble scan
// over a raw grid. It returns nil for a grid with no content.
func Prepare(name string, grid [][]string, r *rules.Rules) *Frame {
	hdr := PromoteHeader(grid, r)
	if hdr < 0 {
		return nil
	}
	mapped := MapColumns(FromGrid(name, grid, hdr), r)
	if !mapped.Has(constants.FieldVendorName) {
		mapped.VendorHint = DetectVendorHint(grid, hdr, r)
	}
	return mapped
}
