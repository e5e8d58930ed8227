package config

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// configSchema is the JSON Schema the raw config file is checked against
// before unmarshaling. Durations are nanosecond integers.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "nats": {
      "type": "object",
      "properties": {
        "url": {"type": "string", "minLength": 1},
        "max_reconnects": {"type": "integer"},
        "reconnect_wait": {"type": "integer", "minimum": 0},
        "timeout": {"type": "integer", "minimum": 0},
        "username": {"type": "string"},
        "password": {"type": "string"},
        "token": {"type": "string"},
        "tls": {
          "type": "object",
          "properties": {
            "enabled": {"type": "boolean"},
            "cert_file": {"type": "string"},
            "key_file": {"type": "string"},
            "ca_file": {"type": "string"}
          },
          "additionalProperties": false
        }
      },
      "additionalProperties": false
    },
    "store": {
      "type": "object",
      "properties": {
        "bucket": {"type": "string", "minLength": 1},
        "id_field": {"type": "string"},
        "timeout": {"type": "integer", "minimum": 0},
        "max_value_size": {"type": "integer", "minimum": 0}
      },
      "additionalProperties": false
    },
    "retry": {
      "type": "object",
      "properties": {
        "max_attempts": {"type": "integer", "minimum": 0},
        "initial_delay": {"type": "integer", "minimum": 0},
        "max_delay": {"type": "integer", "minimum": 0},
        "multiplier": {"type": "number", "minimum": 0}
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

// validateSchema checks raw config JSON against the schema and reports
// every violation in one error.
func validateSchema(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(configSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("config schema validation: %w", err)
	}
	if !result.Valid() {
		msg := "config does not match schema:"
		for _, desc := range result.Errors() {
			msg += fmt.Sprintf("\n  - %s: %s", desc.Field(), desc.Description())
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}
