package llm

// BuildItemsJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// We pass this to the model as a structured output constraint and also use it locally to validate.
func BuildItemsJSONSchema() map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"item_code":   map[string]any{"type": "string", "minLength": 1},
			"description": map[string]any{"type": "string", "minLength": 1},
			"qty":         map[string]any{"type": "number", "exclusiveMinimum": 0},
			"unit_price":  map[string]any{"type": "number", "minimum": 0},
			"total":       map[string]any{"type": "number"},
			"vendor_name": map[string]any{"type": "string", "minLength": 1},
			"currency":    map[string]any{"type": "string", "pattern": `^[A-Z]{3}$`},
		},
		"anyOf": []any{
			map[string]any{"required": []string{"qty"}},
			map[string]any{"required": []string{"unit_price"}},
			map[string]any{"required": []string{"total"}},
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"items": map[string]any{"type": "array", "items": item},
		},
		"required": []string{"items"},
	}
}
