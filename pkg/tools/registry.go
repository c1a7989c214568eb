package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"scriptura/pkg/api"
	"scriptura/pkg/llm"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const previewLen = 200

// Registry is the fixed inventory of tools offered to the model, keyed by name.
type Registry struct {
	mu        sync.RWMutex
	tools     map[string]api.Tool
	validator Validator
}

// NewRegistry creates a registry backed by the default validator.
func NewRegistry() *Registry {
	return &Registry{
		tools:     make(map[string]api.Tool),
		validator: DefaultValidator{},
	}
}

// Register inserts a tool when its name is not in use.
func (r *Registry) Register(tool api.Tool) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.tools[name] = tool
	return nil
}

// MustRegister registers tools and panics on conflict. For startup wiring.
func (r *Registry) MustRegister(tools ...api.Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Get fetches a tool by name.
func (r *Registry) Get(name string) (api.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Names lists the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetValidator swaps the validator used before execution.
func (r *Registry) SetValidator(v Validator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validator = v
}

// Declarations implements api.ToolExecutor.
func (r *Registry) Declarations() []llm.ToolDefinition {
	names := r.Names()
	defs := make([]llm.ToolDefinition, 0, len(names))
	for _, name := range names {
		tool, _ := r.Get(name)
		defs = append(defs, llm.ToolDefinition{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  SchemaMap(tool.Schema()),
		})
	}
	return defs
}

// Execute implements api.ToolExecutor.
func (r *Registry) Execute(ctx context.Context, call llm.ToolCall) (string, error) {
	slog.InfoContext(ctx, "tool_called", "tool", call.Name, "id", call.ID, "args", call.Arguments)

	tool, ok := r.Get(call.Name)
	if !ok {
		return r.soft(ctx, call, fmt.Sprintf("Error: unknown tool '%s'. Available tools: %s",
			call.Name, strings.Join(r.Names(), ", "))), nil
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Arguments); raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return r.soft(ctx, call, fmt.Sprintf("Error: arguments for %s are not a JSON object: %v", call.Name, err)), nil
		}
	}

	r.mu.RLock()
	validator := r.validator
	r.mu.RUnlock()
	if validator != nil {
		if err := validator.Validate(args, tool.Schema()); err != nil {
			return r.soft(ctx, call, fmt.Sprintf("Error: invalid arguments for %s: %v", call.Name, err)), nil
		}
	}

	out, err := tool.Execute(ctx, args)
	if err != nil {
		slog.ErrorContext(ctx, "tool_failed", "tool", call.Name, "id", call.ID, "error", err)
		return "", fmt.Errorf("tool %s: %w", call.Name, err)
	}

	slog.InfoContext(ctx, "tool_return", "tool", call.Name, "id", call.ID, "result", preview(out))
	return out, nil
}

func (r *Registry) soft(ctx context.Context, call llm.ToolCall, msg string) string {
	slog.WarnContext(ctx, "tool_rejected", "tool", call.Name, "id", call.ID, "result", msg)
	return msg
}

func preview(s string) string {
	if r := []rune(s); len(r) > previewLen {
		return string(r[:previewLen]) + "..."
	}
	return s
}
