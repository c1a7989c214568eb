package openailm

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"scriptura/pkg/llm"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
)

// Client is a wrapper around the official OpenAI Go SDK (Responses API).
type Client struct {
	client       *openai.Client
	provider     string
	model        string
	debugEnabled bool
	temperature  *float64
	options      map[string]any
}

// NewClient creates a new OpenAI client
func NewClient(provider, apiKey, model, baseURL string, temperature *float64, options map[string]any) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)

	return &Client{
		client:      &client,
		provider:    provider,
		model:       model,
		temperature: temperature,
		options:     options,
	}
}

func (c *Client) Provider() string {
	return c.provider
}

func (c *Client) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "timeout") {
		return true
	}

	if strings.Contains(msg, "500 internal") ||
		strings.Contains(msg, "502 bad gateway") ||
		strings.Contains(msg, "503 service unavailable") ||
		strings.Contains(msg, "429 too many requests") ||
		strings.Contains(msg, "overloaded") {
		return true
	}

	// 400, 401 and friends are permanent.
	return false
}

func (c *Client) requestOptions() []option.RequestOption {
	var opts []option.RequestOption

	temperature := c.temperature
	if t, ok := c.options["temperature"].(float64); ok && temperature == nil {
		temperature = &t
	}
	if temperature != nil {
		opts = append(opts, option.WithJSONSet("temperature", *temperature))
	}
	if p, ok := c.options["top_p"].(float64); ok {
		opts = append(opts, option.WithJSONSet("top_p", p))
	}
	if maxTok, ok := c.options["max_tokens"].(float64); ok {
		opts = append(opts, option.WithJSONSet("max_output_tokens", int(maxTok)))
	}
	return opts
}

func (c *Client) StreamChat(ctx context.Context, messages []llm.Message, tools []llm.ToolDefinition) (<-chan llm.StreamChunk, error) {
	params := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: convertMessages(messages),
		},
	}

	if effortStr, ok := c.options["thinking_effort"].(string); ok && effortStr != "" && effortStr != "off" {
		var effort shared.ReasoningEffort
		switch effortStr {
		case "low":
			effort = shared.ReasoningEffortLow
		case "high":
			effort = shared.ReasoningEffortHigh
		default:
			effort = shared.ReasoningEffortMedium
		}
		params.Reasoning = shared.ReasoningParam{Effort: effort}
	}

	if converted := convertTools(tools); len(converted) > 0 {
		params.Tools = converted
	}

	opts := c.requestOptions()
	chunkCh := make(chan llm.StreamChunk, 100)

	slog.DebugContext(ctx, "OpenAI streaming", "model", c.model, "items", len(messages), "tools", len(tools))

	go func() {
		defer close(chunkCh)

		stream := c.client.Responses.NewStreaming(ctx, params, opts...)
		defer stream.Close()

		debugger := llm.NewStreamDebugger(ctx, c.provider, c.debugEnabled)
		defer debugger.Close()

		finish := llm.StopReasonStop
		var lastUsage *llm.LLMUsage
		// Function calls are collected in emission order.
		var toolCalls []llm.ToolCall

		for stream.Next() {
			event := stream.Current()
			if debugger.Enabled() {
				debugger.WriteJSON(map[string]any{"event": event.RawJSON()})
			}

			switch variant := event.AsAny().(type) {
			case responses.ResponseTextDeltaEvent:
				chunkCh <- llm.NewTextChunk(variant.Delta)

			case responses.ResponseReasoningTextDeltaEvent:
				chunkCh <- llm.NewThinkingChunk(variant.Delta)

			case responses.ResponseReasoningSummaryTextDeltaEvent:
				chunkCh <- llm.NewThinkingChunk(variant.Delta)

			case responses.ResponseOutputItemDoneEvent:
				if variant.Item.Type == "function_call" {
					toolCalls = append(toolCalls, llm.ToolCall{
						ID:        variant.Item.CallID,
						Name:      variant.Item.Name,
						Arguments: variant.Item.Arguments,
					})
				}

			case responses.ResponseCompletedEvent:
				if u := variant.Response.Usage; u.TotalTokens > 0 {
					lastUsage = &llm.LLMUsage{
						PromptTokens:     int(u.InputTokens),
						CompletionTokens: int(u.OutputTokens),
						TotalTokens:      int(u.TotalTokens),
					}
				}

			case responses.ResponseIncompleteEvent:
				finish = llm.StopReasonLength

			case responses.ResponseFailedEvent:
				err := fmt.Errorf("openai response failed: %s", variant.Response.Error.Message)
				chunkCh <- llm.NewErrorChunk("API response failed", err)
				return

			case responses.ResponseErrorEvent:
				err := fmt.Errorf("openai error %s: %s", variant.Code, variant.Message)
				chunkCh <- llm.NewErrorChunk(fmt.Sprintf("API error: %s", variant.Message), err)
				return
			}
		}

		if err := stream.Err(); err != nil {
			chunkCh <- llm.NewErrorChunk(fmt.Sprintf("Stream error: %v", err), err)
			return
		}

		if len(toolCalls) > 0 {
			chunkCh <- llm.NewToolCallChunk(toolCalls...)
			finish = llm.StopReasonToolCall
		}
		if lastUsage != nil {
			lastUsage.StopReason = finish
			llm.LogUsage(ctx, c.model, lastUsage)
		}
		chunkCh <- llm.NewFinalChunk(finish, lastUsage)
	}()

	return chunkCh, nil
}

func convertMessages(messages []llm.Message) []responses.ResponseInputItemUnionParam {
	items := make([]responses.ResponseInputItemUnionParam, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			items = append(items, responses.ResponseInputItemParamOfMessage(
				m.GetTextContent(),
				responses.EasyInputMessageRoleSystem,
			))
		case llm.RoleUser:
			items = append(items, userItem(m))
		case llm.RoleAssistant:
			if text := m.GetTextContent(); text != "" {
				items = append(items, responses.ResponseInputItemParamOfMessage(
					text,
					responses.EasyInputMessageRoleAssistant,
				))
			}
			for _, tc := range m.ToolCalls {
				items = append(items, responses.ResponseInputItemParamOfFunctionCall(
					tc.Arguments,
					tc.ID,
					tc.Name,
				))
			}
		case llm.RoleTool:
			items = append(items, responses.ResponseInputItemParamOfFunctionCallOutput(
				m.ToolCallID,
				m.GetTextContent(),
			))
		}
	}

	return items
}

func userItem(m llm.Message) responses.ResponseInputItemUnionParam {
	hasImage := false
	for _, block := range m.Content {
		if block.Type == llm.BlockTypeImage && block.Source != nil {
			hasImage = true
			break
		}
	}
	if !hasImage {
		return responses.ResponseInputItemParamOfMessage(m.GetTextContent(), responses.EasyInputMessageRoleUser)
	}

	var parts responses.ResponseInputMessageContentListParam
	for _, block := range m.Content {
		switch block.Type {
		case llm.BlockTypeText:
			parts = append(parts, responses.ResponseInputContentUnionParam{
				OfInputText: &responses.ResponseInputTextParam{Text: block.Text},
			})
		case llm.BlockTypeImage:
			if block.Source == nil {
				continue
			}
			imgURL := block.Source.URL
			if block.Source.Type == "base64" {
				imgURL = fmt.Sprintf("data:%s;base64,%s", block.Source.MediaType, base64.StdEncoding.EncodeToString(block.Source.Data))
			}
			parts = append(parts, responses.ResponseInputContentUnionParam{
				OfInputImage: &responses.ResponseInputImageParam{
					Detail:   responses.ResponseInputImageDetailAuto,
					ImageURL: param.NewOpt(imgURL),
				},
			})
		}
	}
	return responses.ResponseInputItemParamOfMessage(parts, responses.EasyInputMessageRoleUser)
}

func convertTools(tools []llm.ToolDefinition) []responses.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	out := make([]responses.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}
