package validation

import (
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// LoadSchema loads a JSON schema from a file
func LoadSchema(schemaPath string) (*gojsonschema.Schema, error) {
	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaData)
	schema, err := gojsonschema.NewSchema(schemaLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	return schema, nil
}

// ValidateDocument validates a JSON document against a schema
func ValidateDocument(document []byte, schema *gojsonschema.Schema) error {
	documentLoader := gojsonschema.NewBytesLoader(document)
	result, err := schema.Validate(documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate: %w", err)
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

// ValidateCatalog validates a model catalog JSON document against the
// catalog schema file.
func ValidateCatalog(catalogJSON []byte, schemaPath string) error {
	schema, err := LoadSchema(schemaPath)
	if err != nil {
		return err
	}
	return ValidateDocument(catalogJSON, schema)
}
