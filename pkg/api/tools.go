package api

import (
	"context"

	"scriptura/pkg/llm"
)

// Tool is a named operation the model may ask to run. Execute receives the
// decoded, schema-validated arguments. Domain misses are returned as text;
// a non-nil error means the tool itself broke.
type Tool interface {
	Name() string
	Description() string
	Schema() *JSONSchema
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// JSONSchema is the subset of JSON Schema used to declare and validate tool arguments.
type JSONSchema struct {
	Type       string               `json:"type"`
	Properties map[string]*Property `json:"properties,omitempty"`
	Required   []string             `json:"required,omitempty"`
}

// Property describes one argument.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// ToolExecutor is what the orchestrator needs from a tool registry.
type ToolExecutor interface {
	// Declarations lists the tools offered to the model.
	Declarations() []llm.ToolDefinition
	// Execute runs call. Unknown tools and invalid arguments come back as
	// "Error: ..." text; the error return is reserved for hard failures.
	Execute(ctx context.Context, call llm.ToolCall) (string, error)
}
