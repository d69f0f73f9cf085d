package quotes

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/numeric"
	"github.com/joseph-ayodele/variance-drafts/internal/rules"
	"github.com/joseph-ayodele/variance-drafts/internal/tabular"
)

// VendorTotalsFromLines sums known amounts per vendor.
func VendorTotalsFromLines(lines []entity.ProcurementLine) []entity.VendorTotal {
	sums := map[string]decimal.Decimal{}
	var order []string
	for _, l := range lines {
		v := deref(l.VendorName)
		if v == "" || l.Amount == nil {
			continue
		}
		if _, ok := sums[v]; !ok {
			order = append(order, v)
		}
		sums[v] = sums[v].Add(decimal.NewFromFloat(*l.Amount))
	}
	out := make([]entity.VendorTotal, 0, len(order))
	for _, v := range order {
		out = append(out, entity.VendorTotal{Vendor: v, Total: sums[v].Round(2).InexactFloat64()})
	}
	sortTotals(out)
	return out
}

// VendorTotalsFromSheet reads an explicit totals sheet. The vendor column is
// the mapped vendor field or the first column; the total is the amount field.
func VendorTotalsFromSheet(f *tabular.Frame, r *rules.Rules) []entity.VendorTotal {
	if f == nil || !f.Has(constants.FieldAmount) || len(f.Columns) == 0 {
		return nil
	}
	vendorCol := f.Columns[0]
	if f.Has(constants.FieldVendorName) {
		vendorCol = string(constants.FieldVendorName)
	}
	var out []entity.VendorTotal
	for _, row := range f.Rows {
		v := strings.TrimSpace(row[vendorCol])
		if v == "" || r.IsTotalLabel(v) {
			continue
		}
		total, ok := numeric.ParseString(f.Value(row, constants.FieldAmount))
		if !ok {
			continue
		}
		out = append(out, entity.VendorTotal{Vendor: v, Total: numeric.Round(total, 2)})
	}
	sortTotals(out)
	return out
}

func sortTotals(ts []entity.VendorTotal) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].Total > ts[j].Total })
}

// Highlights renders a highlights sheet as "D01 – qty 1 – best unit 100 SAR – note" lines.
func Highlights(f *tabular.Frame, r *rules.Rules) []string {
	if f == nil {
		return nil
	}
	noteCol := ""
	for _, c := range f.Columns {
		n := rules.NormalizeHeader(c)
		if n == "note" || n == "notes" || n == "comment" || n == "remarks" {
			noteCol = c
			break
		}
	}
	var out []string
	for _, row := range f.Rows {
		var parts []string
		if v := f.Value(row, constants.FieldItemCode); v != "" {
			parts = append(parts, v)
		}
		if v := f.Value(row, constants.FieldQty); v != "" {
			parts = append(parts, "qty "+v)
		}
		if v := f.Value(row, constants.FieldUnitPrice); v != "" {
			parts = append(parts, "best unit "+v+" SAR")
		}
		if noteCol != "" {
			if v := strings.TrimSpace(row[noteCol]); v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) > 0 {
			out = append(out, strings.Join(parts, " – "))
		}
		if len(out) >= r.MaxHighlights {
			break
		}
	}
	return out
}
