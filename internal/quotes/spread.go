package quotes

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/numeric"
)

// Thresholds are the materiality limits applied to spreads. A row is
// reported when either limit is reached.
type Thresholds struct {
	Pct    float64
	Amount float64
}

// Comparison is the full quote comparison for a set of lines.
type Comparison struct {
	Spreads []entity.QuoteSpreadRow
	BestMix *entity.BestMixResult
	Items   int
}

// item is one comparable group of lines.
type item struct {
	key         string
	code        *string
	description *string
	lines       []entity.ProcurementLine
	vendors     []string           // first-seen order
	best        map[string]float64 // vendor -> lowest unit price
}

// Analyze groups priced, vendor-attributed lines by (item code, description),
// or description alone when no line has a code, and compares vendors within
// each group. Groups with fewer than two vendors are not comparable.
func Analyze(lines []entity.ProcurementLine, th Thresholds) Comparison {
	items := groupItems(lines)
	var cmp Comparison
	var comparable []*item
	for _, it := range items {
		if len(it.vendors) < 2 {
			continue
		}
		row, ok := spreadRow(it)
		if !ok {
			continue
		}
		comparable = append(comparable, it)
		if row.SpreadPct >= th.Pct || row.TotalSpread >= th.Amount {
			cmp.Spreads = append(cmp.Spreads, round(row))
		}
	}
	sort.SliceStable(cmp.Spreads, func(i, j int) bool {
		a, b := cmp.Spreads[i], cmp.Spreads[j]
		if a.TotalSpread != b.TotalSpread {
			return a.TotalSpread > b.TotalSpread
		}
		return a.SpreadPct > b.SpreadPct
	})
	cmp.Items = len(comparable)
	cmp.BestMix = bestMix(comparable)
	return cmp
}

func groupItems(lines []entity.ProcurementLine) []*item {
	useCode := false
	for _, l := range lines {
		if deref(l.ItemCode) != "" {
			useCode = true
			break
		}
	}
	index := map[string]*item{}
	var out []*item
	for _, l := range lines {
		vendor := deref(l.VendorName)
		if vendor == "" || l.UnitPrice == nil {
			continue
		}
		code, desc := deref(l.ItemCode), deref(l.Description)
		if !useCode {
			code = ""
		}
		if code == "" && desc == "" {
			continue
		}
		k := fold(code) + "\x00" + fold(desc)
		it, ok := index[k]
		if !ok {
			it = &item{key: itemKey(code, desc), code: strPtr(code), description: strPtr(desc), best: map[string]float64{}}
			index[k] = it
			out = append(out, it)
		}
		it.lines = append(it.lines, l)
		if p, seen := it.best[vendor]; !seen {
			it.vendors = append(it.vendors, vendor)
			it.best[vendor] = *l.UnitPrice
		} else if *l.UnitPrice < p {
			it.best[vendor] = *l.UnitPrice
		}
	}
	return out
}

func spreadRow(it *item) (entity.QuoteSpreadRow, bool) {
	var minV, maxV string
	for _, v := range it.vendors {
		p := it.best[v]
		if minV == "" || p < it.best[minV] {
			minV = v
		}
		if maxV == "" || p > it.best[maxV] {
			maxV = v
		}
	}
	minU, maxU := it.best[minV], it.best[maxV]
	if minU <= 0 {
		return entity.QuoteSpreadRow{}, false
	}
	var (
		qtyTotal float64
		qtyKnown bool
	)
	for _, l := range it.lines {
		if l.Quantity != nil {
			qtyTotal += *l.Quantity
			qtyKnown = true
		}
	}
	var qty *float64
	if qtyKnown {
		qty = &qtyTotal
	}
	dMin, dMax := decimal.NewFromFloat(minU), decimal.NewFromFloat(maxU)
	unitSpread := dMax.Sub(dMin)
	pct := dMax.Div(dMin).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100))
	return entity.QuoteSpreadRow{
		ItemKey:      it.key,
		ItemCode:     it.code,
		Description:  it.description,
		QtyTotal:     qty,
		MinVendor:    minV,
		MinUnitPrice: minU,
		MaxVendor:    maxV,
		MaxUnitPrice: maxU,
		UnitSpread:   unitSpread.InexactFloat64(),
		SpreadPct:    pct.InexactFloat64(),
		TotalSpread:  unitSpread.Mul(decimal.NewFromFloat(max(qtyTotal, 1))).InexactFloat64(),
		VendorCount:  len(it.vendors),
	}, true
}

func round(r entity.QuoteSpreadRow) entity.QuoteSpreadRow {
	if r.QtyTotal != nil {
		q := numeric.Round(*r.QtyTotal, 2)
		r.QtyTotal = &q
	}
	r.MinUnitPrice = numeric.Round(r.MinUnitPrice, 2)
	r.MaxUnitPrice = numeric.Round(r.MaxUnitPrice, 2)
	r.UnitSpread = numeric.Round(r.UnitSpread, 2)
	r.SpreadPct = numeric.Round(r.SpreadPct, 2)
	r.TotalSpread = numeric.Round(r.TotalSpread, 2)
	return r
}

func itemKey(code, desc string) string {
	switch {
	case code != "" && desc != "":
		return code + " - " + desc
	case code != "":
		return code
	default:
		return desc
	}
}

func fold(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
