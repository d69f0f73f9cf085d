package quotes

import (
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/numeric"
)

// bestMix prices every comparable item at its cheapest vendor and compares
// the sum with the cheapest vendor that quoted all of them. Item quantity is
// the largest quoted quantity, or 1 when none is given. It returns nil when
// nothing is comparable.
func bestMix(items []*item) *entity.BestMixResult {
	if len(items) == 0 {
		return nil
	}
	res := &entity.BestMixResult{Items: len(items), Picks: make([]entity.BestMixPick, 0, len(items))}

	best := decimal.Zero
	coverage := map[string]int{}
	vendorTotal := map[string]decimal.Decimal{}
	var vendorOrder []string

	for _, it := range items {
		qty := itemQty(it)
		dq := decimal.NewFromFloat(qty)
		pickVendor, pickPrice := "", 0.0
		for _, v := range it.vendors {
			p := it.best[v]
			if pickVendor == "" || p < pickPrice {
				pickVendor, pickPrice = v, p
			}
			if _, seen := vendorTotal[v]; !seen {
				vendorOrder = append(vendorOrder, v)
			}
			vendorTotal[v] = vendorTotal[v].Add(decimal.NewFromFloat(p).Mul(dq))
			coverage[v]++
		}
		cost := decimal.NewFromFloat(pickPrice).Mul(dq)
		best = best.Add(cost)
		res.Picks = append(res.Picks, entity.BestMixPick{
			ItemKey:   it.key,
			Vendor:    pickVendor,
			UnitPrice: numeric.Round(pickPrice, 2),
			Qty:       qty,
			Cost:      cost.Round(2).InexactFloat64(),
		})
	}
	res.BestMixTotal = best.Round(2).InexactFloat64()

	var cheapest string
	var cheapestTotal decimal.Decimal
	for _, v := range vendorOrder {
		if coverage[v] != len(items) {
			continue
		}
		if cheapest == "" || vendorTotal[v].LessThan(cheapestTotal) {
			cheapest, cheapestTotal = v, vendorTotal[v]
		}
	}
	if cheapest != "" {
		total := cheapestTotal.Round(2).InexactFloat64()
		savings := cheapestTotal.Sub(best).Round(2).InexactFloat64()
		res.CheapestSingleVendor = &cheapest
		res.SingleVendorTotal = &total
		res.EstimatedSavings = &savings
	}
	return res
}

func itemQty(it *item) float64 {
	q := 0.0
	for _, l := range it.lines {
		if l.Quantity != nil && *l.Quantity > q {
			q = *l.Quantity
		}
	}
	if q <= 0 {
		return 1
	}
	return q
}
