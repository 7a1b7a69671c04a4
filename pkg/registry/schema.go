package registry

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// registrySchema describes the shape of the registry document. Taxonomy
// lists must be non-empty: a type without taxonomies cannot be filtered
// and therefore cannot be bulk-deleted safely.
const registrySchema = `{
	"type": "object",
	"required": ["content_types"],
	"properties": {
		"content_types": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "label", "taxonomies"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"label": {"type": "string", "minLength": 1},
					"taxonomies": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "object",
							"required": ["id", "label"],
							"properties": {
								"id": {"type": "string", "minLength": 1},
								"label": {"type": "string", "minLength": 1}
							}
						}
					}
				}
			}
		}
	}
}`

func validateDocument(payload []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(registrySchema)
	documentLoader := gojsonschema.NewBytesLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate registry document: %w", err)
	}

	if !result.Valid() {
		details := ""
		for _, resultError := range result.Errors() {
			details += "; " + resultError.String()
		}

		return fmt.Errorf("registry document is invalid%s", details)
	}

	return nil
}
