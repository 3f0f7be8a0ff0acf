// internal/api/schemas.go
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	errs "github.com/bettersnoozing/hack-mcwics/internal/common/errors"
)

const maxBodyBytes = 1 << 20

var chatRequestSchema = map[string]interface{}{
	"type":                 "object",
	"required":             []interface{}{"message"},
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"sessionId": map[string]interface{}{"type": "string", "maxLength": 128},
		"message":   map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 4000},
	},
}

var chatResetSchema = map[string]interface{}{
	"type":                 "object",
	"required":             []interface{}{"sessionId"},
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"sessionId": map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 128},
	},
}

var loginSchema = map[string]interface{}{
	"type":                 "object",
	"required":             []interface{}{"email", "password"},
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"email":    map[string]interface{}{"type": "string", "minLength": 3, "maxLength": 320},
		"password": map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 256},
	},
}

var statusPatchSchema = map[string]interface{}{
	"type":                 "object",
	"required":             []interface{}{"status"},
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"status": map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 64},
	},
}

var clubSchema = map[string]interface{}{
	"type":                 "object",
	"required":             []interface{}{"slug", "name"},
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"id":           map[string]interface{}{"type": "string"},
		"slug":         map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 128},
		"name":         map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 256},
		"description":  map[string]interface{}{"type": "string"},
		"tags":         map[string]interface{}{"type": "string"},
		"memberCount":  map[string]interface{}{"type": "integer", "minimum": 0},
		"isRecruiting": map[string]interface{}{"type": "boolean"},
	},
}

var positionSchema = map[string]interface{}{
	"type":                 "object",
	"required":             []interface{}{"clubId", "title"},
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"id":             map[string]interface{}{"type": "string"},
		"clubId":         map[string]interface{}{"type": "string", "minLength": 1},
		"title":          map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 256},
		"description":    map[string]interface{}{"type": "string"},
		"requirements":   map[string]interface{}{"type": "string"},
		"deadline":       map[string]interface{}{"type": "string"},
		"isOpen":         map[string]interface{}{"type": "boolean"},
		"applicantCount": map[string]interface{}{"type": "integer", "minimum": 0},
	},
}

var recommendSchema = map[string]interface{}{
	"type":                 "object",
	"required":             []interface{}{"interests"},
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"interests": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"maxItems": 20,
			"items":    map[string]interface{}{"type": "string", "minLength": 1},
		},
	},
}

// decodeValidated reads the request body, validates it against the schema,
// and decodes it into out.
func decodeValidated(r *http.Request, schema map[string]interface{}, out interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errs.NewValidationFailedError("failed to read request body")
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return errs.NewValidationFailedError("request body is not valid JSON")
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return errs.NewValidationFailedError(fmt.Sprintf("validation error: %v", err))
	}
	if !result.Valid() {
		details := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			details[i] = desc.String()
		}
		return errs.NewValidationFailedError(strings.Join(details, "; "))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errs.NewValidationFailedError("request body does not match the expected shape")
	}
	return nil
}
