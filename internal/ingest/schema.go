package ingest

import "github.com/caseflow-app/client-aggregator/constants"

// BuildExtractionJSONSchema returns the JSON-Schema (draft 2020-12
// subset) an extraction result payload must satisfy before it reaches
// the engine. Unknown keys are rejected so collaborator drift is caught
// at the boundary instead of surfacing as odd profile fields.
func BuildExtractionJSONSchema() map[string]any {
	salaryProps := map[string]any{
		"employer_name": map[string]any{"type": "string", "minLength": 1},
		"gross":         map[string]any{"type": "string", "minLength": 1},
		"net":           map[string]any{"type": "string"},
		"currency_code": map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
		"pay_period":    map[string]any{"type": "string"},
	}

	fieldProps := map[string]any{
		"name":       map[string]any{"type": "string", "minLength": 1},
		"kind":       map[string]any{"type": "string", "enum": constants.AllFieldKinds},
		"raw":        map[string]any{"type": "string"},
		"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"salary": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           salaryProps,
			"required":             []string{"employer_name", "gross"},
		},
	}

	props := map[string]any{
		"document_id":   map[string]any{"type": "string", "minLength": 1},
		"client_key":    map[string]any{"type": "string"},
		"document_type": map[string]any{"type": "string"},
		"timestamp":     map[string]any{"type": "string"},
		"fields": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           fieldProps,
				"required":             []string{"name", "kind"},
			},
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"document_id", "timestamp", "fields"},
	}
}
