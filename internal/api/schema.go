package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const sessionSchemaURL = "schema://study-session.json"

// sessionSchemaDef describes the fields the study engine depends on. Extra
// fields are allowed.
var sessionSchemaDef = map[string]any{
	"type":     "object",
	"required": []any{"session_id", "words"},
	"properties": map[string]any{
		"session_id":    map[string]any{"type": "string"},
		"collection_id": map[string]any{"type": "string"},
		"mode":          map[string]any{"type": "string"},
		"total_count":   map[string]any{"type": "integer", "minimum": 0},
		"words": map[string]any{
			"type": []any{"array", "null"},
			"items": map[string]any{
				"type":     "object",
				"required": []any{"word_id", "item_id", "word"},
				"properties": map[string]any{
					"word_id":        map[string]any{"type": "string", "minLength": 1},
					"item_id":        map[string]any{"type": "string", "minLength": 1},
					"word":           map[string]any{"type": "string"},
					"chinese":        map[string]any{"type": []any{"string", "null"}},
					"phonetic":       map[string]any{"type": []any{"string", "null"}},
					"part_of_speech": map[string]any{"type": []any{"string", "null"}},
					"audio_url":      map[string]any{"type": []any{"string", "null"}},
					"status":         map[string]any{"type": "integer", "minimum": 0, "maximum": 4},
					"sentences": map[string]any{
						"type":  []any{"array", "null"},
						"items": map[string]any{"type": "string"},
					},
				},
			},
		},
	},
}

var sessionSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	defBytes, err := json.Marshal(sessionSchemaDef)
	if err != nil {
		return nil, fmt.Errorf("marshal session schema: %w", err)
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse session schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(sessionSchemaURL, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(sessionSchemaURL)
})

// validateSession checks a raw session body against the session schema.
func validateSession(raw []byte) error {
	compiled, err := sessionSchema()
	if err != nil {
		return fmt.Errorf("compile session schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
