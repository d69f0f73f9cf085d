// Package quotes normalizes procurement lines and compares vendor quotes.
package quotes

import (
	"strings"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/calendar"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/numeric"
	"github.com/joseph-ayodele/variance-drafts/internal/rules"
	"github.com/joseph-ayodele/variance-drafts/internal/tabular"
)

// BuildLines reads procurement lines from a mapped frame. A missing amount
// is derived from qty × unit price; a missing vendor column falls back to the
// sheet's preamble vendor. Total rows and rows with no identity or no
// numbers are skipped.
func BuildLines(f *tabular.Frame, r *rules.Rules) []entity.ProcurementLine {
	var out []entity.ProcurementLine
	for _, row := range f.Rows {
		if f.IsTotalRow(row, r) {
			continue
		}
		line := entity.ProcurementLine{
			ItemCode:    strPtr(f.Value(row, constants.FieldItemCode)),
			Description: strPtr(f.Value(row, constants.FieldDescription)),
			Quantity:    numeric.Ptr(f.Value(row, constants.FieldQty)),
			UnitPrice:   numeric.Ptr(f.Value(row, constants.FieldUnitPrice)),
			Amount:      numeric.Ptr(f.Value(row, constants.FieldAmount)),
			VendorName:  strPtr(f.Value(row, constants.FieldVendorName)),
			Currency:    strPtr(strings.ToUpper(f.Value(row, constants.FieldCurrency))),
			VatRate:     numeric.Ptr(f.Value(row, constants.FieldVatRate)),
			Source:      constants.SourceTable,
			Sheet:       f.Name,
		}
		if line.VendorName == nil && !f.Has(constants.FieldVendorName) {
			line.VendorName = strPtr(f.VendorHint)
		}
		if d := f.Value(row, constants.FieldDate); d != "" {
			if t, ok := calendar.ParseDate(d); ok {
				d = t.Format("2006-01-02")
			}
			line.DocDate = &d
		}
		if line.ItemCode == nil && line.Description == nil {
			continue
		}
		if line.Quantity == nil && line.UnitPrice == nil && line.Amount == nil {
			continue
		}
		out = append(out, DeriveAmount(line))
	}
	return out
}

// DeriveAmount fills a missing amount from qty × unit price, rounded to 2 places.
func DeriveAmount(line entity.ProcurementLine) entity.ProcurementLine {
	if line.Amount == nil && line.Quantity != nil && line.UnitPrice != nil {
		a := numeric.Round(*line.Quantity**line.UnitPrice, 2)
		line.Amount = &a
	}
	return line
}

// Summarize reports line count, vendors and the sum of known amounts.
func Summarize(lines []entity.ProcurementLine) *entity.ProcurementSummary {
	s := &entity.ProcurementSummary{Lines: len(lines), Vendors: []string{}}
	seen := map[string]bool{}
	var total float64
	known := false
	for _, l := range lines {
		if v := deref(l.VendorName); v != "" && !seen[v] {
			seen[v] = true
			s.Vendors = append(s.Vendors, v)
		}
		if l.Amount != nil {
			total += *l.Amount
			known = true
		}
	}
	if known {
		t := numeric.Round(total, 2)
		s.TotalAmount = &t
	}
	return s
}

func strPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
