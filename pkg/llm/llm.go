package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// json is the package-wide codec.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LLMUsage holds token accounting reported by a provider.
type LLMUsage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	ThoughtsTokens   int    `json:"thoughts_tokens,omitempty"`
	CachedTokens     int    `json:"cached_tokens,omitempty"`
	PromptDetail     string `json:"prompt_detail,omitempty"`
	CompletionDetail string `json:"completion_detail,omitempty"`
	StopReason       string `json:"stop_reason,omitempty"`
}

// LogUsage writes the usage of one reasoning step at debug level.
func LogUsage(ctx context.Context, model string, usage *LLMUsage) {
	if usage == nil {
		return
	}
	attrs := []any{
		"model", model,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
		"total_tokens", usage.TotalTokens,
	}
	if usage.ThoughtsTokens > 0 {
		attrs = append(attrs, "thoughts_tokens", usage.ThoughtsTokens)
	}
	if usage.CachedTokens > 0 {
		attrs = append(attrs, "cached_tokens", usage.CachedTokens)
	}
	if usage.StopReason != "" {
		attrs = append(attrs, "stop_reason", usage.StopReason)
	}
	slog.DebugContext(ctx, "LLM usage", attrs...)
}

// LLMClient is the reasoning capability: given the conversation so far and the
// tools on offer, produce the next assistant message as a stream.
type LLMClient interface {
	// StreamChat starts one reasoning step. The returned channel is closed when
	// the step ends; a chunk with Err set means the step failed midway.
	StreamChat(ctx context.Context, messages []Message, tools []ToolDefinition) (<-chan StreamChunk, error)

	// IsTransientError reports whether err is worth retrying (503, rate limit...).
	IsTransientError(err error) bool
}

// FallbackClient tries each client in order, retrying transient failures.
type FallbackClient struct {
	Clients    []LLMClient
	MaxRetries int
	RetryDelay time.Duration
}

func (f *FallbackClient) StreamChat(ctx context.Context, messages []Message, tools []ToolDefinition) (<-chan StreamChunk, error) {
	var lastErr error
	for i, client := range f.Clients {
		if i > 0 {
			slog.WarnContext(ctx, "Previous provider failed, trying fallback", "provider", i+1)
		}

		maxRetries := f.MaxRetries
		if maxRetries <= 0 {
			maxRetries = 1
		}

		for retry := 1; retry <= maxRetries; retry++ {
			if retry > 1 {
				slog.InfoContext(ctx, "Retrying provider", "provider", i+1, "attempt", retry, "max", maxRetries)
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(time.Duration(retry-1) * f.RetryDelay):
				}
			}

			ch, err := client.StreamChat(ctx, messages, tools)
			if err == nil {
				return ch, nil
			}

			lastErr = err

			if client.IsTransientError(err) && retry < maxRetries {
				slog.WarnContext(ctx, "Provider failed with transient error", "provider", i+1, "error", err)
				continue
			}

			slog.ErrorContext(ctx, "Provider failed", "provider", i+1, "error", err)
			break
		}
	}
	return nil, fmt.Errorf("all fallback providers failed: %w", lastErr)
}

// IsTransientError is false: a FallbackClient error means every child gave up.
func (f *FallbackClient) IsTransientError(err error) bool {
	return false
}

// IsTransientMessage is the shared heuristic providers use on error strings.
func IsTransientMessage(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"503", "overloaded", "429", "resource exhausted", "rate limit", "500", "internal error", "timeout", "connection reset"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
