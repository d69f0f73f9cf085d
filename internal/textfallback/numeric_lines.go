package textfallback

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/numeric"
	"github.com/joseph-ayodele/variance-drafts/internal/quotes"
	"github.com/joseph-ayodele/variance-drafts/internal/rules"
)

// tolerance is the relative error allowed between qty × unit and the total.
const tolerance = 0.02

// maxQty bounds quantities inferred from two amounts.
const maxQty = 1000

var reAmountToken = regexp.MustCompile(`^\(?-?(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?\)?$`)

// NumericTriplets reads lines holding three adjacent numbers where the
// first times the second matches the third.
type NumericTriplets struct {
	Rules *rules.Rules
}

func (NumericTriplets) Name() string { return constants.SourceTriplet }

func (n NumericTriplets) Extract(_ context.Context, text string) (Extraction, error) {
	r := orDefault(n.Rules)
	var out Extraction
	for _, line := range lines(text) {
		toks := strings.Fields(line)
		// Scan right to left: totals sit at the end of a row.
		for i := len(toks) - 3; i >= 0; i-- {
			q, okQ := amount(toks[i])
			u, okU := amount(toks[i+1])
			t, okT := amount(toks[i+2])
			if !okQ || !okU || !okT || q <= 0 || u <= 0 || !consistent(q*u, t) {
				continue
			}
			out.Lines = append(out.Lines, tokenLine(r, toks[:i], q, u, t, constants.SourceTriplet))
			break
		}
	}
	return out, nil
}

// TwoAmounts reads lines holding a unit price followed by a total and infers
// the quantity when the total is a near-integral multiple below maxQty.
type TwoAmounts struct {
	Rules *rules.Rules
}

func (TwoAmounts) Name() string { return constants.SourceTwoAmounts }

func (a TwoAmounts) Extract(_ context.Context, text string) (Extraction, error) {
	r := orDefault(a.Rules)
	var out Extraction
	for _, line := range lines(text) {
		toks := strings.Fields(line)
		for i := len(toks) - 2; i >= 0; i-- {
			u, okU := amount(toks[i])
			t, okT := amount(toks[i+1])
			if !okU || !okT || u <= 0 || t < u {
				continue
			}
			q := math.Round(t / u)
			if q <= 0 || q >= maxQty || !consistent(q*u, t) {
				continue
			}
			out.Lines = append(out.Lines, tokenLine(r, toks[:i], q, u, t, constants.SourceTwoAmounts))
			break
		}
	}
	return out, nil
}

// tokenLine builds a line from the words preceding the numbers. A leading
// item marker becomes the item code; the rest is the description.
func tokenLine(r *rules.Rules, words []string, q, u, t float64, source string) entity.ProcurementLine {
	l := entity.ProcurementLine{
		Quantity:  &q,
		UnitPrice: &u,
		Amount:    &t,
		Source:    source,
	}
	if len(words) > 0 {
		if code, rest, ok := leadingMarker(strings.Join(words, " "), r); ok {
			l.ItemCode = strPtr(code)
			l.Description = strPtr(strings.Trim(rest, " -–:|"))
		} else {
			l.Description = strPtr(strings.Join(words, " "))
		}
	}
	return quotes.DeriveAmount(l)
}

func amount(tok string) (float64, bool) {
	if !reAmountToken.MatchString(tok) {
		return 0, false
	}
	return numeric.ParseString(tok)
}

func consistent(product, total float64) bool {
	if total <= 0 {
		return false
	}
	return math.Abs(product-total) <= tolerance*total
}

func lines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
