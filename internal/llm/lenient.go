package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var reCurrency = regexp.MustCompile(`^[A-Z]{3}$`)

// SanitizeOptionalFields removes optional fields that fail the stricter
// schema so the remaining items still validate. Items left with no number
// at all are dropped.
func SanitizeOptionalFields(doc []byte) ([]byte, []string, error) {
	var resp struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(doc, &resp); err != nil {
		return nil, nil, err
	}

	var dropped []string
	kept := make([]map[string]any, 0, len(resp.Items))
	for i, m := range resp.Items {
		if v, ok := m["currency"].(string); ok {
			s := strings.ToUpper(strings.TrimSpace(v))
			if reCurrency.MatchString(s) {
				m["currency"] = s
			} else {
				delete(m, "currency")
				dropped = append(dropped, fmt.Sprintf("items[%d].currency", i))
			}
		}
		if q, ok := m["qty"].(float64); ok && q <= 0 {
			delete(m, "qty")
			dropped = append(dropped, fmt.Sprintf("items[%d].qty", i))
		}
		if u, ok := m["unit_price"].(float64); ok && u < 0 {
			delete(m, "unit_price")
			dropped = append(dropped, fmt.Sprintf("items[%d].unit_price", i))
		}
		_, hasQ := m["qty"]
		_, hasU := m["unit_price"]
		_, hasT := m["total"]
		if !hasQ && !hasU && !hasT {
			dropped = append(dropped, fmt.Sprintf("items[%d]", i))
			continue
		}
		kept = append(kept, m)
	}

	b, err := json.Marshal(map[string]any{"items": kept})
	if err != nil {
		return nil, nil, err
	}
	return b, dropped, nil
}
