package tools

import (
	"fmt"
	"math"
	"sort"

	"scriptura/pkg/api"
)

// Validator validates tool arguments before execution.
type Validator interface {
	Validate(args map[string]any, schema *api.JSONSchema) error
}

// DefaultValidator covers required fields, primitive types, enums and
// numeric minimums. Unknown arguments are ignored.
type DefaultValidator struct{}

// Validate ensures that args satisfy schema.
func (DefaultValidator) Validate(args map[string]any, schema *api.JSONSchema) error {
	if schema == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	for _, field := range schema.Required {
		if v, exists := args[field]; !exists || v == nil {
			return fmt.Errorf("missing required field: %s", field)
		}
	}

	// Sorted so the first reported problem is deterministic.
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		prop, ok := schema.Properties[key]
		if !ok || prop == nil {
			continue
		}
		value := args[key]
		if value == nil {
			continue
		}
		if err := validateType(value, prop.Type); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		if prop.Minimum != nil {
			if n, ok := toFloat(value); ok && n < *prop.Minimum {
				return fmt.Errorf("field %s: must be >= %v, got %v", key, *prop.Minimum, n)
			}
		}
		if len(prop.Enum) > 0 {
			s, _ := value.(string)
			if !contains(prop.Enum, s) {
				return fmt.Errorf("field %s: must be one of %v", key, prop.Enum)
			}
		}
	}
	return nil
}

func validateType(value any, expected string) error {
	switch expected {
	case "":
		return nil
	case "string":
		if _, ok := value.(string); ok {
			return nil
		}
	case "number":
		if _, ok := toFloat(value); ok {
			return nil
		}
	case "integer":
		if n, ok := toFloat(value); ok && math.Trunc(n) == n {
			return nil
		}
	case "boolean":
		if _, ok := value.(bool); ok {
			return nil
		}
	case "object":
		if _, ok := value.(map[string]any); ok {
			return nil
		}
	case "array":
		if _, ok := value.([]any); ok {
			return nil
		}
	default:
		return fmt.Errorf("unsupported schema type %q", expected)
	}
	return fmt.Errorf("expected %s but got %T", expected, value)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	}
	return 0, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// SchemaMap converts schema into the generic map providers send on the wire.
func SchemaMap(schema *api.JSONSchema) map[string]any {
	if schema == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"type": "object"}
	}
	if _, ok := out["properties"]; !ok {
		out["properties"] = map[string]any{}
	}
	return out
}

// Min is a helper for Property.Minimum literals.
func Min(v float64) *float64 {
	return &v
}
