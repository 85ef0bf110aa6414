package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled holds one compiled schema per Schema.Name.
var compiled sync.Map

// validateResponse checks raw against schema. A nil schema accepts
// anything.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("not json: %w", err)}
	}
	sch, err := compileSchema(schema)
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	if err := sch.Validate(doc); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if s, ok := compiled.Load(schema.Name); ok {
		return s.(*jsonschema.Schema), nil
	}

	raw, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", schema.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", schema.Name, err)
	}

	c := jsonschema.NewCompiler()
	url := "mem://" + schema.Name + ".json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", schema.Name, err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", schema.Name, err)
	}
	actual, _ := compiled.LoadOrStore(schema.Name, s)
	return actual.(*jsonschema.Schema), nil
}
