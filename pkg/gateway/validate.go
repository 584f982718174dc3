package gateway

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mcpchecker/kanban-mcp/pkg/registry"
)

// Validate checks a raw argument bag against a schema. Every missing required
// field and every wrongly typed field is collected before failing. Fields that
// are not declared in the schema are dropped. A null value counts as absent.
func Validate(raw any, schema registry.Schema, operation string) (registry.Args, error) {
	if raw == nil {
		return nil, &ValidationError{Operation: operation, Reason: "arguments are required"}
	}

	bag, ok := raw.(map[string]any)
	if !ok {
		return nil, &ValidationError{
			Operation: operation,
			Reason:    fmt.Sprintf("arguments must be an object, got %s", jsonType(raw)),
		}
	}

	verr := &ValidationError{Operation: operation}
	args := make(registry.Args, len(schema))

	for _, field := range schema {
		value, present := bag[field.Name]
		if !present || value == nil {
			if field.Required {
				verr.Missing = append(verr.Missing, field.Name)
			}
			continue
		}

		actual := jsonType(value)
		if actual != string(field.Type) {
			verr.Mismatched = append(verr.Mismatched, TypeMismatch{
				Field:    field.Name,
				Expected: string(field.Type),
				Actual:   actual,
			})
			continue
		}

		args[field.Name] = value.(string)
	}

	if len(verr.Missing) > 0 || len(verr.Mismatched) > 0 {
		return nil, verr
	}

	return args, nil
}

// ValidateIdentifiers checks every identifier field present in args.
func ValidateIdentifiers(args registry.Args, schema registry.Schema) error {
	for _, field := range schema {
		if !field.Identifier {
			continue
		}
		value, ok := args[field.Name]
		if !ok || slices.Contains(field.Verbs, value) {
			continue
		}
		if !IsIdentifier(value) {
			return &InvalidIdentifierError{Param: field.Name, Value: value}
		}
	}
	return nil
}

// IsIdentifier reports whether s is a non-empty run of ASCII letters and digits.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// jsonType names the JSON type of a decoded value.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
