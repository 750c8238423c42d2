package need

import (
	"bytes"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// configSchema is the JSON Schema for the needs-definition document.
// Structural problems are caught here; semantic checks (threshold ranges,
// cross-references) live in ParseConfig.
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["needs"],
  "properties": {
    "needs": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["baseMax", "baseDecayRate", "thresholds"],
        "properties": {
          "name": {"type": "string"},
          "category": {"type": "string"},
          "icon": {"type": "string"},
          "baseMax": {"type": "number"},
          "baseDecayRate": {"type": "number"},
          "baseComfortValue": {"type": "number"},
          "thresholds": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["value", "label", "urgency"],
              "properties": {
                "value": {"type": "number"},
                "label": {"type": "string"},
                "urgency": {"type": "string"},
                "moodEffect": {"type": "number"}
              }
            }
          },
          "personalityModifiers": {
            "type": "object",
            "additionalProperties": {
              "type": "object",
              "properties": {
                "decayRateMultiplier": {"type": "number"},
                "thresholdShift": {"type": "number"},
                "baseValue": {"type": "number"}
              }
            }
          }
        }
      }
    },
    "satisfactionMethods": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["id", "amount"],
          "properties": {
            "id": {"type": "string"},
            "thoughts": {"type": "array", "items": {"type": "string"}},
            "amount": {"type": "number"}
          }
        }
      }
    },
    "environmentalEffects": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "additionalProperties": {"type": "number"}
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("needs.schema.json", configSchema)

func validateSchema(data []byte) error {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	return compiledSchema.Validate(doc)
}
