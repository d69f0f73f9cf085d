// Package variance groups budget/actual rows, attributes change orders to
// the groups, and filters them by materiality.
package variance

import (
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
)

type groupKey struct {
	project  string
	period   string
	category string
}

type group struct {
	key    groupKey
	budget decimal.Decimal
	actual decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Aggregate groups rows by (project, period, category) in first-seen order.
// A row's category is its own, else its cost code's mapped category, else
// Uncategorized.
func Aggregate(rows []entity.BudgetActualRow, categories entity.CategoryMap) []entity.VarianceItem {
	index := map[groupKey]int{}
	var groups []*group
	for _, r := range rows {
		k := groupKey{project: r.ProjectID, period: r.Period, category: ResolveCategory(r.Category, r.CostCode, categories)}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, &group{key: k})
		}
		g := groups[i]
		g.budget = g.budget.Add(decimal.NewFromFloat(r.Budget))
		g.actual = g.actual.Add(decimal.NewFromFloat(r.Actual))
	}

	out := make([]entity.VarianceItem, 0, len(groups))
	for _, g := range groups {
		diff := g.actual.Sub(g.budget)
		pct := decimal.Zero
		if !g.budget.IsZero() {
			pct = diff.Div(g.budget).Mul(hundred)
		}
		out = append(out, entity.VarianceItem{
			ProjectID:      g.key.project,
			Period:         g.key.period,
			Category:       g.key.category,
			BudgetAmount:   g.budget.InexactFloat64(),
			ActualAmount:   g.actual.InexactFloat64(),
			VarianceAmount: diff.InexactFloat64(),
			VariancePct:    pct.InexactFloat64(),
			Drivers:        []string{},
			Vendors:        []string{},
			EvidenceLinks:  []string{},
		})
	}
	return out
}

// ResolveCategory applies the category fallback chain.
func ResolveCategory(category, costCode string, categories entity.CategoryMap) string {
	if c := constants.NormalizeCategory(category); c != "" {
		return c
	}
	if c, ok := categories.Lookup(costCode); ok {
		return constants.NormalizeCategory(c)
	}
	return constants.Uncategorized
}
