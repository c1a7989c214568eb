package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"scriptura/pkg/api"
	"scriptura/pkg/config"
	"scriptura/pkg/llm"
	"scriptura/pkg/utils"
)

var (
	// ErrNotConverged means the model was still asking for tools when the
	// iteration cap was reached.
	ErrNotConverged = errors.New("reasoning did not converge")
	// ErrToolFailure wraps a tool that broke (as opposed to reporting a miss).
	ErrToolFailure = errors.New("tool execution failed")
	// ErrEmptyResponse is a step that produced neither text nor tool calls.
	ErrEmptyResponse = errors.New("empty model response")
)

// DefaultMaxIterations applies when system.json sets no positive cap.
const DefaultMaxIterations = 6

// Recorder archives a finished run. Failures to record never fail the run.
type Recorder interface {
	Record(ctx context.Context, requestID string, messages []llm.Message, answer string, runErr error) error
}

// Engine drives the REASON / EXECUTE_TOOLS / DONE loop for one conversation
// at a time. It holds no per-request state and is safe for concurrent use.
type Engine struct {
	client   llm.LLMClient
	tools    api.ToolExecutor
	system   *config.SystemStore
	recorder Recorder
}

// NewEngine wires the engine. tools may be nil for a model-only setup.
func NewEngine(client llm.LLMClient, tools api.ToolExecutor, system *config.SystemStore) *Engine {
	if system == nil {
		system = config.NewSystemStore(nil)
	}
	return &Engine{client: client, tools: tools, system: system}
}

// SetRecorder sets the transcript recorder.
func (e *Engine) SetRecorder(r Recorder) {
	e.recorder = r
}

// Run advances conv until the model answers without tool calls and returns
// that answer's flattened text. conv is appended to in place.
func (e *Engine) Run(ctx context.Context, conv *llm.Conversation) (answer string, err error) {
	sys := e.system.Get()

	if e.recorder != nil {
		defer func() {
			if recErr := e.recorder.Record(ctx, conv.RequestID, conv.Messages(), answer, err); recErr != nil {
				slog.WarnContext(ctx, "Failed to record transcript", "error", recErr)
			}
		}()
	}

	maxIter := sys.MaxAgentIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	var decls []llm.ToolDefinition
	if sys.EnableTools && e.tools != nil {
		decls = e.tools.Declarations()
	}

	for step := 1; step <= maxIter; step++ {
		msg, err := e.reason(ctx, sys, conv, decls)
		if err != nil {
			return "", fmt.Errorf("reasoning step %d: %w", step, err)
		}

		if !msg.HasToolCalls() {
			conv.Append(msg)
			slog.InfoContext(ctx, "Agent finished", "steps", step)
			return llm.FlattenText(msg.Content), nil
		}

		for i := range msg.ToolCalls {
			if msg.ToolCalls[i].ID == "" {
				msg.ToolCalls[i].ID = "call_" + utils.ShortID()
			}
		}
		conv.Append(msg)

		for _, call := range msg.ToolCalls {
			out, err := e.executeTool(ctx, sys, call)
			if err != nil {
				return "", err
			}
			conv.Append(llm.NewToolResultMessage(call, out))
		}
	}

	slog.ErrorContext(ctx, "Agent hit iteration cap", "max", maxIter)
	return "", fmt.Errorf("%w after %d steps", ErrNotConverged, maxIter)
}

// reason runs one REASON step, retrying transient failures.
func (e *Engine) reason(ctx context.Context, sys *config.SystemConfig, conv *llm.Conversation, decls []llm.ToolDefinition) (llm.Message, error) {
	for attempt := 0; ; attempt++ {
		msg, err := e.streamStep(ctx, sys, conv.Messages(), decls)
		if err == nil {
			return msg, nil
		}
		if !e.attemptRetry(ctx, sys, attempt, err) {
			return llm.Message{}, err
		}
	}
}

// streamStep collects one streamed response into a single assistant message.
func (e *Engine) streamStep(ctx context.Context, sys *config.SystemConfig, messages []llm.Message, decls []llm.ToolDefinition) (llm.Message, error) {
	runCtx := ctx
	if sys.LLMTimeoutMs > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(sys.LLMTimeoutMs)*time.Millisecond)
		defer cancel()
	}

	chunkCh, err := e.client.StreamChat(runCtx, messages, decls)
	if err != nil {
		return llm.Message{}, err
	}

	msg, usage, err := CollectChunks(runCtx, chunkCh)
	if err != nil {
		return llm.Message{}, err
	}

	if !msg.HasToolCalls() && llm.FlattenText(msg.Content) == "" {
		return llm.Message{}, ErrEmptyResponse
	}
	if usage != nil && usage.StopReason == llm.StopReasonLength {
		slog.WarnContext(ctx, "Response truncated by length limit")
	}
	return msg, nil
}

// CollectChunks drains chunkCh into one assistant message. It returns on the
// final chunk, on channel close, on a chunk carrying Err, or when ctx ends.
func CollectChunks(ctx context.Context, chunkCh <-chan llm.StreamChunk) (llm.Message, *llm.LLMUsage, error) {
	msg := llm.Message{
		Role:      llm.RoleAssistant,
		Timestamp: time.Now().Unix(),
	}
	var usage *llm.LLMUsage

	for {
		select {
		case <-ctx.Done():
			return msg, usage, ctx.Err()
		case chunk, ok := <-chunkCh:
			if !ok {
				return msg, usage, nil
			}
			if chunk.Err != nil {
				return msg, usage, chunk.Err
			}
			for _, block := range chunk.ContentBlocks {
				msg.AppendBlock(block)
			}
			msg.ToolCalls = append(msg.ToolCalls, chunk.ToolCalls...)
			if chunk.Usage != nil {
				usage = chunk.Usage
			}
			if chunk.IsFinal {
				if usage == nil && chunk.FinishReason != "" {
					usage = &llm.LLMUsage{StopReason: chunk.FinishReason}
				}
				return msg, usage, nil
			}
		}
	}
}

// attemptRetry decides whether a failed step is retried and waits out the delay.
func (e *Engine) attemptRetry(ctx context.Context, sys *config.SystemConfig, attempt int, err error) bool {
	transient := errors.Is(err, ErrEmptyResponse) ||
		(errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil) ||
		e.client.IsTransientError(err)
	if !transient {
		slog.ErrorContext(ctx, "Non-transient error, skipping retry", "error", err)
		return false
	}
	if attempt >= sys.MaxRetries {
		slog.ErrorContext(ctx, "Max retries reached", "max", sys.MaxRetries, "error", err)
		return false
	}

	slog.WarnContext(ctx, "Abnormal response, retrying",
		"error", err,
		"retry", fmt.Sprintf("%d/%d", attempt+1, sys.MaxRetries),
	)

	select {
	case <-ctx.Done():
		return false
	case <-time.After(time.Duration(sys.RetryDelayMs) * time.Millisecond):
		return true
	}
}

// executeTool runs one call under the tool timeout. A panicking or broken
// tool is a hard failure wrapped in ErrToolFailure.
func (e *Engine) executeTool(ctx context.Context, sys *config.SystemConfig, call llm.ToolCall) (out string, err error) {
	if e.tools == nil {
		return fmt.Sprintf("Error: unknown tool '%s'", call.Name), nil
	}

	toolCtx := ctx
	if sys.ToolTimeoutMs > 0 {
		var cancel context.CancelFunc
		toolCtx, cancel = context.WithTimeout(ctx, time.Duration(sys.ToolTimeoutMs)*time.Millisecond)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Tool execution panicked", "tool", call.Name, "error", r)
			out, err = "", fmt.Errorf("%w: %s panicked: %v", ErrToolFailure, call.Name, r)
		}
	}()

	out, err = e.tools.Execute(toolCtx, call)
	if err != nil {
		slog.ErrorContext(ctx, "Tool execution error", "tool", call.Name, "id", call.ID, "error", err)
		return "", fmt.Errorf("%w: %w", ErrToolFailure, err)
	}
	return out, nil
}
