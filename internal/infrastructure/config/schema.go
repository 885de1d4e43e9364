package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/rules.schema.json
var rulesSchemaJSON []byte

const rulesSchemaURL = "rules.schema.json"

var (
	rulesSchemaOnce sync.Once
	rulesSchema     *jsonschema.Schema
	rulesSchemaErr  error
)

// compiledRulesSchema compiles the embedded schema once.
func compiledRulesSchema() (*jsonschema.Schema, error) {
	rulesSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource(rulesSchemaURL, bytes.NewReader(rulesSchemaJSON)); err != nil {
			rulesSchemaErr = fmt.Errorf("failed to add rules schema: %w", err)
			return
		}
		rulesSchema, rulesSchemaErr = compiler.Compile(rulesSchemaURL)
		if rulesSchemaErr != nil {
			rulesSchemaErr = fmt.Errorf("failed to compile rules schema: %w", rulesSchemaErr)
		}
	})
	return rulesSchema, rulesSchemaErr
}

// validateRulesDocument checks a JSON document against the rules schema.
func validateRulesDocument(doc []byte) error {
	schema, err := compiledRulesSchema()
	if err != nil {
		return err
	}

	var instance interface{}
	decoder := json.NewDecoder(bytes.NewReader(doc))
	decoder.UseNumber()
	if err := decoder.Decode(&instance); err != nil {
		return fmt.Errorf("failed to decode rules document: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			return formatSchemaValidationError(validationErr)
		}
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// formatSchemaValidationError flattens a JSON Schema validation error tree into one message per leaf.
func formatSchemaValidationError(err *jsonschema.ValidationError) error {
	var messages []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 && e.Message != "" {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if len(messages) == 0 {
		return fmt.Errorf("schema validation failed")
	}
	return fmt.Errorf("schema validation failed:\n    - %s", strings.Join(messages, "\n    - "))
}
