package variance

import (
	"math"

	"github.com/joseph-ayodele/variance-drafts/internal/entity"
)

// FilterMateriality keeps items whose absolute percentage reaches pct or
// whose absolute amount reaches amount. Either clause is enough.
func FilterMateriality(items []entity.VarianceItem, pct, amount float64) []entity.VarianceItem {
	out := make([]entity.VarianceItem, 0, len(items))
	for _, it := range items {
		if math.Abs(it.VariancePct) >= pct || math.Abs(it.VarianceAmount) >= amount {
			out = append(out, it)
		}
	}
	return out
}
