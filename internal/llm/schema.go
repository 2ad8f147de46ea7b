package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildDraftSchema returns the minimal per-record shape (JSON-Schema draft
// 2020-12 subset) a recovered record must satisfy: a number under either
// accepted key, and sane types on the known fields. Range and completeness
// rules live in the capper and validator, not here.
func BuildDraftSchema() map[string]any {
	numberProp := map[string]any{
		"type": []string{"integer", "string"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_number": numberProp,
			"number":          numberProp,
			"content":         map[string]any{"type": []string{"string", "null"}},
			"description":     map[string]any{"type": []string{"array", "string", "null"}},
			"options":         map[string]any{"type": []string{"object", "null"}},
			"correct_answer":  map[string]any{"type": []string{"string", "number", "null"}},
			"answer":          map[string]any{"type": []string{"string", "number", "null"}},
			"subject":         map[string]any{"type": []string{"string", "null"}},
			"area_name":       map[string]any{"type": []string{"string", "null"}},
			"difficulty":      map[string]any{"type": []string{"string", "null"}},
			"year":            map[string]any{"type": []string{"integer", "string", "null"}},
		},
		"anyOf": []map[string]any{
			{"required": []string{"question_number"}},
			{"required": []string{"number"}},
		},
	}
}

// CompileSchema compiles a schema map for repeated validation.
func CompileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}
