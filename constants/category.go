package constants

import (
	"strings"
)

// Uncategorized is the category given to variance groups whose cost code has no mapping.
const Uncategorized = "Uncategorized"

// DefaultCurrency is stamped on rows whose source carries no currency column.
const DefaultCurrency = "SAR"

// NormalizeCategory trims and collapses inner whitespace, keeping the original casing.
func NormalizeCategory(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// SameCategory reports whether two category labels name the same bucket.
func SameCategory(a, b string) bool {
	a, b = NormalizeCategory(a), NormalizeCategory(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
