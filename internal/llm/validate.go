package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// itemsSchema compiles the line-item schema once per process.
var itemsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return compileSchema("items.json", BuildItemsJSONSchema())
})

// ValidateItems checks a model reply against the line-item schema.
func ValidateItems(data []byte) error {
	schema, err := itemsSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal items: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("items do not match schema: %w", err)
	}
	return nil
}

func compileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}
