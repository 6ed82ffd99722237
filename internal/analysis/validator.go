package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/parchlabs/clauseguard/internal/domain"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// riskItemsSchema is the strict schema every chunk response must satisfy.
// Extra fields are tolerated; missing or mistyped required fields fail the
// whole chunk.
const riskItemsSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "array",
	"items": {
		"type": "object",
		"required": ["clause_title", "risk_level", "summary", "clause_text", "start_index", "end_index", "confidence"],
		"properties": {
			"clause_title": {"type": "string"},
			"risk_level": {"type": "string", "enum": ["LOW", "MEDIUM", "HIGH"]},
			"summary": {"type": "string"},
			"clause_text": {"type": "string"},
			"start_index": {"type": "integer", "minimum": 0},
			"end_index": {"type": "integer", "minimum": 0},
			"confidence": {"type": "number", "minimum": 0, "maximum": 1},
			"metadata": {
				"type": "object",
				"properties": {
					"types": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`

// Validator extracts and validates structured findings from raw model output.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the RiskItem schema once for reuse across chunks.
func NewValidator() *Validator {
	return &Validator{
		schema: jsonschema.MustCompileString("risk_items.json", riskItemsSchema),
	}
}

// Validate locates the first balanced JSON payload inside raw model text and
// validates it as a sequence of RiskItems. Models occasionally return a JSON
// object instead of an array; that yields zero findings rather than an error.
// Any element failing schema validation fails the whole chunk.
func (v *Validator) Validate(raw string) ([]domain.RiskItem, error) {
	payload, ok := extractJSON(raw)
	if !ok {
		return nil, domain.NewFormatError("no JSON payload in model response", nil)
	}

	var decoded any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return nil, domain.NewFormatError("model response is not valid JSON", err)
	}

	if _, isArray := decoded.([]any); !isArray {
		return []domain.RiskItem{}, nil
	}

	if err := v.schema.Validate(decoded); err != nil {
		return nil, domain.NewFormatError("model response does not match the findings schema", err)
	}

	var items []domain.RiskItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, domain.NewFormatError("failed to decode findings", err)
	}

	for i := range items {
		if items[i].EndIndex < items[i].StartIndex {
			return nil, domain.NewFormatError(
				fmt.Sprintf("finding %d has end_index before start_index", i), nil)
		}
		if items[i].Metadata.Types == nil {
			items[i].Metadata.Types = []string{}
		}
	}

	return items, nil
}

// extractJSON returns the first balanced JSON array or object substring in s.
// Model responses often wrap the payload in prose, so everything before the
// first bracket and after its balanced close is discarded.
func extractJSON(s string) (string, bool) {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '[' || s[i] == '{' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
