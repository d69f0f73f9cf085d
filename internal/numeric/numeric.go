// Package numeric turns heterogeneous cell values into numbers without
// inventing any: a value that is not literally present parses as absent.
package numeric

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyTokens are removed before parsing; longer tokens first.
var currencyTokens = []string{"ر.س.", "ر.س", "ريال", "sar", "usd", "aed", "eur", "sr", "$", "€", "£"}

var digitReplacer = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٫", ".", "٬", ",", "،", ",",
)

// TranslateDigits maps Arabic-Indic and Extended Arabic-Indic digits and
// Arabic separators to their ASCII forms.
func TranslateDigits(s string) string {
	return digitReplacer.Replace(s)
}

// Parse converts v to a float. ok is false when no number is present.
func Parse(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case decimal.Decimal:
		return t.InexactFloat64(), true
	case *string:
		if t == nil {
			return 0, false
		}
		return ParseString(*t)
	case string:
		return ParseString(t)
	case fmt.Stringer:
		return ParseString(t.String())
	default:
		return 0, false
	}
}

// ParseString is Parse for text cells.
func ParseString(s string) (float64, bool) {
	s = strings.TrimSpace(TranslateDigits(s))
	if s == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return finite(f)
	}

	lower := strings.ToLower(s)
	for _, tok := range currencyTokens {
		lower = strings.ReplaceAll(lower, tok, "")
	}
	lower = strings.TrimSpace(lower)

	negative := false
	if strings.HasPrefix(lower, "(") && strings.HasSuffix(lower, ")") {
		negative = true
		lower = strings.TrimSuffix(strings.TrimPrefix(lower, "("), ")")
	}

	var b strings.Builder
	digits := 0
	for _, r := range lower {
		switch {
		case r >= '0' && r <= '9':
			digits++
			b.WriteRune(r)
		case r == '.':
			b.WriteRune(r)
		case r == '-' || r == '+':
			// a sign is only meaningful before the first digit
			if digits > 0 || b.Len() > 0 {
				return 0, false
			}
			if r == '-' {
				negative = !negative
			}
		}
	}
	if digits == 0 {
		return 0, false
	}

	num := b.String()
	if n := strings.Count(num, "."); n > 1 {
		last := strings.LastIndex(num, ".")
		num = strings.ReplaceAll(num[:last], ".", "") + num[last:]
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		f = -f
	}
	return finite(f)
}

// Ptr is Parse returning nil for absent values.
func Ptr(v any) *float64 {
	f, ok := Parse(v)
	if !ok {
		return nil
	}
	return &f
}

// Round rounds half away from zero to the given number of places.
func Round(f float64, places int32) float64 {
	return decimal.NewFromFloat(f).Round(places).InexactFloat64()
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
