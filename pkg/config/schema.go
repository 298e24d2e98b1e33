// pkg/config/schema.go
package config

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of the file configuration, for editor
// integration and config linting.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}

	schema := reflector.Reflect(&Config{})
	schema.Title = "go-trajectory configuration"
	schema.Description = "Validates the JSON file consumed by the simulate and visualize commands"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config schema: %w", err)
	}
	return data, nil
}
