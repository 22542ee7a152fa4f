package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"notes-agent/internal/domain"
)

// intentSchemaJSON keeps every key required so the same document works with
// strict structured output. Absent values come back as "".
const intentSchemaJSON = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"action": {"type": "string", "description": "create, retrieve or list"},
		"title": {"type": "string", "description": "note title, empty when not given"},
		"text": {"type": "string", "description": "note body, empty when not given"}
	},
	"required": ["action", "title", "text"]
}`

// IntentOutputSchema is the structured-output contract of the intent model.
var IntentOutputSchema = domain.OutputSchema{
	Name:   "note_intent",
	Schema: json.RawMessage(intentSchemaJSON),
}

var intentSchema = mustCompile(intentSchemaJSON)

func mustCompile(schema string) *gojsonschema.Schema {
	s, err := compileSchema(json.RawMessage(schema))
	if err != nil {
		panic(err)
	}
	return s
}

func compileSchema(schema json.RawMessage) (*gojsonschema.Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("usecase: compile schema: %w", err)
	}
	return s, nil
}

// validateDocument checks doc against schema and flattens every violation
// into one error.
func validateDocument(schema *gojsonschema.Schema, doc []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validation execution failed: %w", err)
	}
	if result.Valid() {
		return nil
	}
	errs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(errs, "; "))
}
