package variance

import (
	"strings"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/calendar"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/numeric"
	"github.com/joseph-ayodele/variance-drafts/internal/rules"
	"github.com/joseph-ayodele/variance-drafts/internal/tabular"
)

// BuildBudgetActualRows reads budget/actual rows from a mapped frame. Rows
// missing either amount and totals rows are skipped.
func BuildBudgetActualRows(f *tabular.Frame, r *rules.Rules) []entity.BudgetActualRow {
	var out []entity.BudgetActualRow
	for _, row := range f.Rows {
		if f.IsTotalRow(row, r) {
			continue
		}
		budget, okB := numeric.ParseString(f.Value(row, constants.FieldBudget))
		actual, okA := numeric.ParseString(f.Value(row, constants.FieldActual))
		if !okB || !okA {
			continue
		}
		period := calendar.NormalizePeriod(f.Value(row, constants.FieldPeriod))
		if period == "" {
			period = calendar.NormalizePeriod(f.Value(row, constants.FieldDate))
		}
		currency := strings.ToUpper(f.Value(row, constants.FieldCurrency))
		if currency == "" {
			currency = constants.DefaultCurrency
		}
		out = append(out, entity.BudgetActualRow{
			ProjectID: f.Value(row, constants.FieldProjectID),
			Period:    period,
			CostCode:  f.Value(row, constants.FieldCostCode),
			Category:  constants.NormalizeCategory(f.Value(row, constants.FieldCategory)),
			Budget:    budget,
			Actual:    actual,
			Currency:  currency,
		})
	}
	return out
}

// BuildChangeOrderRows reads change orders from a mapped frame. Every field
// is optional; parseable dates are written as YYYY-MM-DD.
func BuildChangeOrderRows(f *tabular.Frame, r *rules.Rules) []entity.ChangeOrderRow {
	var out []entity.ChangeOrderRow
	for _, row := range f.Rows {
		if f.IsTotalRow(row, r) {
			continue
		}
		co := entity.ChangeOrderRow{
			ProjectID:      strPtr(f.Value(row, constants.FieldProjectID)),
			CoID:           strPtr(f.Value(row, constants.FieldCoID)),
			Category:       strPtr(constants.NormalizeCategory(f.Value(row, constants.FieldCategory))),
			Description:    strPtr(f.Value(row, constants.FieldDescription)),
			LinkedCostCode: strPtr(f.Value(row, constants.FieldLinkedCostCode)),
			VendorName:     strPtr(f.Value(row, constants.FieldVendorName)),
			FileLink:       strPtr(f.Value(row, constants.FieldFileLink)),
			Amount:         numeric.Ptr(f.Value(row, constants.FieldAmount)),
		}
		if co.LinkedCostCode == nil {
			co.LinkedCostCode = strPtr(f.Value(row, constants.FieldCostCode))
		}
		if d := f.Value(row, constants.FieldDate); d != "" {
			if t, ok := calendar.ParseDate(d); ok {
				d = t.Format("2006-01-02")
			}
			co.Date = &d
		}
		if co == (entity.ChangeOrderRow{}) {
			continue
		}
		out = append(out, co)
	}
	return out
}

func strPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
