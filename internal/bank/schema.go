package bank

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// QuestionDefinition is the JSON schema of a single question. The
// generator reuses it for structured LLM output.
var QuestionDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{
			"type":        "string",
			"minLength":   1,
			"description": "Short unique identifier, e.g. \"q1\"",
		},
		"prompt": map[string]any{
			"type":        "string",
			"minLength":   1,
			"maxLength":   1000,
			"description": "The question shown to the learner, in plain text",
		},
		"format": map[string]any{
			"type":        "string",
			"enum":        []any{"free_text", "multiple_choice"},
			"description": "How the learner answers: type the answer or pick from choices",
		},
		"answer_type": map[string]any{
			"type":        "string",
			"enum":        []any{"text", "integer", "decimal", "fraction"},
			"description": "How the answer is compared",
		},
		"choices": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"maxItems":    8,
			"description": "Options for multiple_choice format. Empty for free_text.",
		},
		"answer": map[string]any{
			"type":        "string",
			"minLength":   1,
			"description": "The correct answer. For multiple_choice: the text of the correct option.",
		},
		"hint": map[string]any{
			"type":        "string",
			"description": "Optional short hint",
		},
		"explanation": map[string]any{
			"type":        "string",
			"maxLength":   2000,
			"description": "Brief explanation shown after answering",
		},
	},
	"required":             []any{"id", "prompt", "answer"},
	"additionalProperties": false,
}

// FileDefinition is the JSON schema of a bank file.
var FileDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"version": map[string]any{"type": "string"},
		"title":   map[string]any{"type": "string"},
		"topic":   map[string]any{"type": "string"},
		"settings": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"max_attempts":    map[string]any{"type": "integer", "minimum": 1},
				"attempt_seconds": map[string]any{"type": "integer", "minimum": 1},
				"review_seconds":  map[string]any{"type": "integer", "minimum": 1},
			},
			"additionalProperties": false,
		},
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    QuestionDefinition,
		},
	},
	"required":             []any{"version", "questions"},
	"additionalProperties": false,
}

var (
	fileSchemaOnce sync.Once
	fileSchema     *jsonschema.Schema
	fileSchemaErr  error
)

// validateSchema checks a decoded JSON document against FileDefinition.
func validateSchema(doc any) error {
	fileSchemaOnce.Do(func() {
		fileSchema, fileSchemaErr = compile("bank-file", FileDefinition)
	})
	if fileSchemaErr != nil {
		return fileSchemaErr
	}
	if err := fileSchema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBank, err)
	}
	return nil
}

func compile(name string, def map[string]any) (*jsonschema.Schema, error) {
	// The compiler wants plain JSON values, so round-trip the Go literal.
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	return c.Compile(url)
}
