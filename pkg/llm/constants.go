package llm

import "context"

// StopReason constants define normalized reasons for LLM generation termination.
// All providers must normalize their native stop reasons to these values.
const (
	StopReasonStop     = "stop"      // Normal completion
	StopReasonLength   = "length"    // Output truncated due to token limit
	StopReasonToolCall = "tool_call" // The model is waiting for tool results
)

// ContentBlock Type constants define the supported content block formats
// used throughout the message pipeline.
const (
	BlockTypeText     = "text"     // Plain text content
	BlockTypeThinking = "thinking" // Internal reasoning/chain-of-thought
	BlockTypeImage    = "image"    // Binary image data
	BlockTypeError    = "error"    // Error message displayed to user
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

type contextKey string

const (
	// RequestIDContextKey carries the short id tagging every log line of one request.
	RequestIDContextKey contextKey = "request_id"
	// DebugDirContextKey nests raw chunk dumps under a per-request directory.
	DebugDirContextKey contextKey = "llm_debug_dir"
)

// WithRequestID returns a context tagged with id for logging and chunk dumps.
func WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, RequestIDContextKey, id)
	return context.WithValue(ctx, DebugDirContextKey, id)
}

// RequestIDFrom returns the request id stored in ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}
