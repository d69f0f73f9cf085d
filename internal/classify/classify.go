// Package classify decides what each mapped sheet holds and which output
// mode a whole workbook should produce.
package classify

import (
	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/rules"
	"github.com/joseph-ayodele/variance-drafts/internal/tabular"
)

// Sheet is a mapped frame with its schema.
type Sheet struct {
	Frame  *tabular.Frame
	Schema constants.Schema
	Role   rules.SheetRole
}

// Schema classifies one frame. workbookVendors is the number of distinct
// vendors seen across the whole workbook, used for multi-vendor detection.
// A comparison needs a description column; item codes alone only identify
// procurement lines.
func Schema(f *tabular.Frame, workbookVendors int) constants.Schema {
	if f == nil || len(f.Rows) == 0 {
		return constants.SchemaUnclassified
	}
	has := f.Has
	priced := has(constants.FieldUnitPrice) || has(constants.FieldAmount)
	identified := has(constants.FieldDescription) || has(constants.FieldItemCode)

	switch {
	case has(constants.FieldBudget) && has(constants.FieldActual):
		return constants.SchemaBudgetActual
	case has(constants.FieldCoID) || has(constants.FieldLinkedCostCode):
		return constants.SchemaChangeOrder
	case hasVendor(f) && priced && has(constants.FieldDescription) && (SheetVendorCount(f) >= 2 || workbookVendors >= 2):
		return constants.SchemaQuoteCompare
	case priced && identified:
		return constants.SchemaProcurementLine
	default:
		return constants.SchemaUnclassified
	}
}

// Workbook classifies every frame, counting vendors across sheets.
func Workbook(frames []*tabular.Frame, r *rules.Rules) []Sheet {
	vendors := WorkbookVendors(frames)
	out := make([]Sheet, 0, len(frames))
	for _, f := range frames {
		if f == nil {
			continue
		}
		out = append(out, Sheet{Frame: f, Schema: Schema(f, vendors), Role: r.SheetRole(f.Name)})
	}
	return out
}

// SheetVendorCount counts the distinct vendors named in one sheet.
func SheetVendorCount(f *tabular.Frame) int {
	return len(vendorSet(f))
}

// WorkbookVendors counts distinct vendors across all sheets, including
// vendors taken from preamble labels.
func WorkbookVendors(frames []*tabular.Frame) int {
	all := map[string]struct{}{}
	for _, f := range frames {
		for v := range vendorSet(f) {
			all[v] = struct{}{}
		}
	}
	return len(all)
}

func hasVendor(f *tabular.Frame) bool {
	return f.Has(constants.FieldVendorName) || f.VendorHint != ""
}

func vendorSet(f *tabular.Frame) map[string]struct{} {
	set := map[string]struct{}{}
	if f == nil {
		return set
	}
	for _, v := range f.Distinct(constants.FieldVendorName) {
		set[v] = struct{}{}
	}
	if !f.Has(constants.FieldVendorName) && f.VendorHint != "" {
		set[f.VendorHint] = struct{}{}
	}
	return set
}

// Decide picks the output mode for a classified workbook. An empty mode
// means no sheet is usable and the text fallback should run.
func Decide(sheets []Sheet) constants.Mode {
	if modes := Modes(sheets); len(modes) > 0 {
		return modes[0]
	}
	return ""
}

// Modes lists every output mode some sheet supports, best first. A caller
// whose first mode yields no rows moves on to the next.
func Modes(sheets []Sheet) []constants.Mode {
	var variance, quote, procurement bool
	for _, s := range sheets {
		switch {
		case s.Schema == constants.SchemaBudgetActual:
			variance = true
		case s.Schema == constants.SchemaQuoteCompare, s.Role == rules.RoleLineItems && s.Schema != constants.SchemaUnclassified:
			quote = true
		case s.Role == rules.RoleTotals && s.Frame != nil && s.Frame.Has(constants.FieldAmount):
			// a vendor totals sheet alone still yields a comparison
			quote = true
		case s.Schema == constants.SchemaProcurementLine:
			procurement = true
		}
	}
	var modes []constants.Mode
	if variance {
		modes = append(modes, constants.ModeVariance)
	}
	if quote {
		modes = append(modes, constants.ModeQuoteCompare)
	}
	if procurement {
		modes = append(modes, constants.ModeProcurement)
	}
	return modes
}
