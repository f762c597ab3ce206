package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

//go:embed config.schema.json
var schemaDocument []byte

var ErrSchemaMismatch = errors.New("configuration does not match schema")

// SchemaValidator checks the structural shape of a commands document.
// Build one with NewSchemaValidator at startup and share it.
type SchemaValidator struct {
	resolved *jsonschema.Resolved
}

// NewSchemaValidator parses and resolves the embedded commands schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	var schema jsonschema.Schema
	if err := json.Unmarshal(schemaDocument, &schema); err != nil {
		return nil, fmt.Errorf("parse commands schema: %w", err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve commands schema: %w", err)
	}
	return &SchemaValidator{resolved: resolved}, nil
}

// Validate checks a JSON document against the commands schema.
func (v *SchemaValidator) Validate(doc []byte) error {
	var instance any
	if err := json.Unmarshal(doc, &instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := v.resolved.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return nil
}

// Schema returns the raw schema document.
func Schema() []byte {
	return append([]byte(nil), schemaDocument...)
}
