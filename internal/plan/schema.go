package plan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrSchemaViolation is returned when a repaired payload still fails the
// step schema.
var ErrSchemaViolation = errors.New("plan payload violates step schema")

const stepSchema = `{
	"type": "object",
	"required": ["stepId", "title", "fields"],
	"additionalProperties": false,
	"properties": {
		"stepId": {"type": "string", "minLength": 1},
		"title": {"type": "string", "minLength": 1, "maxLength": 80},
		"description": {"type": "string", "maxLength": 240},
		"persona": {"enum": ["explorer", "team", "client", "governed"]},
		"reasoning": {"type": "string", "maxLength": 160},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"fields": {
			"type": "array",
			"minItems": 1,
			"maxItems": 6,
			"items": {
				"type": "object",
				"required": ["id", "label", "kind"],
				"additionalProperties": false,
				"properties": {
					"id": {"enum": [
						"workspace_name", "team_size", "invite_emails",
						"integration_select", "compliance_ack", "tone_choice",
						"region_select", "objective_select", "approval_depth"
					]},
					"label": {"type": "string", "minLength": 1, "maxLength": 60},
					"kind": {"enum": ["text", "select", "multiline", "checkbox", "email_list"]},
					"description": {"type": "string", "maxLength": 240},
					"required": {"type": "boolean"},
					"options": {
						"type": "array",
						"maxItems": 12,
						"items": {
							"type": "object",
							"required": ["value"],
							"properties": {
								"value": {"type": "string", "minLength": 1},
								"label": {"type": "string", "maxLength": 60}
							}
						}
					}
				}
			}
		},
		"primaryCta": {
			"type": "object",
			"required": ["label", "action"],
			"additionalProperties": false,
			"properties": {
				"label": {"type": "string", "minLength": 1, "maxLength": 40},
				"action": {"enum": ["next_step", "submit", "finish", "skip"]}
			}
		}
	}
}`

var stepSchemaLoader = gojsonschema.NewStringLoader(stepSchema)

// Validate checks a repaired payload against the step schema. The error
// wraps ErrSchemaViolation and lists every violated constraint.
func Validate(p *Payload) error {
	result, err := gojsonschema.Validate(stepSchemaLoader, gojsonschema.NewGoLoader(p))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(msgs, "; "))
}
