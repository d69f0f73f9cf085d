package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/variance-drafts/internal/numeric"
)

var (
	itemSynonyms = map[string]string{
		"code":          "item_code",
		"item_no":       "item_code",
		"item":          "item_code",
		"quantity":      "qty",
		"unit_rate":     "unit_price",
		"rate":          "unit_price",
		"price":         "unit_price",
		"amount":        "total",
		"line_total":    "total",
		"total_price":   "total",
		"vendor":        "vendor_name",
		"supplier":      "vendor_name",
		"currency_code": "currency",
	}
	numberFields = []string{"qty", "unit_price", "total"}
	stringFields = []string{"item_code", "description", "vendor_name", "currency"}
	allowedKeys  = map[string]struct{}{
		"item_code": {}, "description": {}, "qty": {}, "unit_price": {},
		"total": {}, "vendor_name": {}, "currency": {},
	}
)

// NormalizeAndSanitizeJSON
// - Wraps a bare array or renames line_items into {"items": [...]}
// - Renames known per-item synonyms (quantity -> qty, amount -> total)
// - Coerces "1,500 SAR"-style strings to numbers for numeric fields
// - Drops null/empty values and unknown keys
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var top any
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}
	dropped := make([]string, 0, 8)

	var items []any
	switch t := top.(type) {
	case []any:
		items = t
		dropped = append(dropped, "(array)->items")
	case map[string]any:
		for _, k := range []string{"items", "line_items", "lines", "data"} {
			if arr, ok := t[k].([]any); ok {
				items = arr
				if k != "items" {
					dropped = append(dropped, k+"->items")
				}
				break
			}
		}
	default:
		return nil, nil, fmt.Errorf("sanitize: unexpected top-level %T", top)
	}

	clean := make([]any, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("items[%d](type)", i))
			continue
		}
		clean = append(clean, sanitizeItem(m, i, &dropped))
	}

	out, err := json.Marshal(map[string]any{"items": clean})
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

func sanitizeItem(m map[string]any, idx int, dropped *[]string) map[string]any {
	note := func(k, why string) { *dropped = append(*dropped, fmt.Sprintf("items[%d].%s(%s)", idx, k, why)) }

	for k := range maps.Clone(m) {
		lk := strings.ToLower(strings.TrimSpace(k))
		if to, ok := itemSynonyms[lk]; ok {
			if _, exists := m[to]; !exists {
				m[to] = m[k]
			}
			delete(m, k)
			continue
		}
		if lk != k {
			m[lk] = m[k]
			delete(m, k)
		}
	}

	for _, k := range numberFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
		case string:
			if f, ok := numeric.ParseString(t); ok {
				m[k] = f
			} else {
				delete(m, k)
				note(k, "unparseable")
			}
		case nil:
			delete(m, k)
			note(k, "null")
		default:
			delete(m, k)
			note(k, "type")
		}
	}

	for _, k := range stringFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") {
				delete(m, k)
				note(k, "empty")
			} else {
				m[k] = s
			}
		case float64:
			m[k] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			delete(m, k)
			note(k, "type")
		}
	}

	for k := range maps.Clone(m) {
		if _, ok := allowedKeys[k]; !ok {
			delete(m, k)
			note(k, "unknown")
		}
	}
	return m
}
