// Package schemas validates generative-model output against the JSON Schema
// documents of the domain records before anything is decoded or stored.
package schemas

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed jsonschema/*.json
var schemaFS embed.FS

type Name string

const (
	JobIntelligence   Name = "job_intelligence"
	MasterResume      Name = "master_resume"
	TailoringStrategy Name = "tailoring_strategy"
)

var compiled = map[Name]*gojsonschema.Schema{}

func init() {
	for _, name := range []Name{JobIntelligence, MasterResume, TailoringStrategy} {
		raw, err := schemaFS.ReadFile("jsonschema/" + string(name) + ".json")
		if err != nil {
			panic(fmt.Sprintf("schemas: missing %s: %v", name, err))
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			panic(fmt.Sprintf("schemas: invalid %s: %v", name, err))
		}
		compiled[name] = schema
	}
}

// ValidationError lists every field that broke the schema.
type ValidationError struct {
	Schema Name
	Errors []FieldError
}

type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	parts := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return fmt.Sprintf("%s validation failed: %s", ve.Schema, strings.Join(parts, "; "))
}

// Validate checks payload against the named schema. A payload that is not
// JSON at all is reported as a root-level validation error.
func Validate(name Name, payload []byte) error {
	schema, ok := compiled[name]
	if !ok {
		return fmt.Errorf("unknown schema: %s", name)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return &ValidationError{
			Schema: name,
			Errors: []FieldError{{Field: "(root)", Message: err.Error()}},
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}

// Decode validates payload and then unmarshals it into target.
func Decode(name Name, payload []byte, target interface{}) error {
	if err := Validate(name, payload); err != nil {
		return err
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return &ValidationError{
			Schema: name,
			Errors: []FieldError{{Field: "(root)", Message: err.Error()}},
		}
	}
	return nil
}
