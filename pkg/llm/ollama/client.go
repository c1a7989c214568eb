package ollama

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"scriptura/pkg/llm"

	jsoniter "github.com/json-iterator/go"
	"github.com/ollama/ollama/api"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OllamaClient Ollama API client
type OllamaClient struct {
	client       *api.Client
	model        string
	options      map[string]any
	debugEnabled bool
}

// NewOllamaClient creates an Ollama client. The HTTP client has no overall
// timeout; the caller's context bounds each step.
func NewOllamaClient(model, baseURL string, options map[string]any) (*OllamaClient, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	var client *api.Client
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		client = api.NewClient(u, &http.Client{Transport: &JSONFixingRoundTripper{Proxied: transport}})
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, err
		}
	}

	slog.Info("Ollama client initialized", "model", model, "base_url", baseURL)

	return &OllamaClient{
		client:  client,
		model:   model,
		options: options,
	}, nil
}

func (o *OllamaClient) Provider() string {
	return "ollama"
}

// convertTools goes through JSON since api.Tool nests several SDK-specific types.
func convertTools(tools []llm.ToolDefinition) []api.Tool {
	if len(tools) == 0 {
		return nil
	}
	wire := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		wire = append(wire, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
			},
		})
	}

	var out []api.Tool
	raw, err := json.Marshal(wire)
	if err != nil {
		slog.Error("Failed to marshal tools", "provider", "ollama", "error", err)
		return nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		slog.Error("Failed to unmarshal to api.Tool", "provider", "ollama", "error", err)
		return nil
	}
	return out
}

func (o *OllamaClient) StreamChat(ctx context.Context, messages []llm.Message, tools []llm.ToolDefinition) (<-chan llm.StreamChunk, error) {
	stream := true
	req := &api.ChatRequest{
		Model:    o.model,
		Messages: convertMessages(messages),
		Options:  o.options,
		Tools:    convertTools(tools),
		Stream:   &stream,
	}

	chunkCh := make(chan llm.StreamChunk, 100)
	startResultCh := make(chan error, 1)

	go func() {
		defer close(chunkCh)

		debugger := llm.NewStreamDebugger(ctx, "ollama", o.debugEnabled)
		defer debugger.Close()

		started := false
		var thoughtsCount int
		var toolCalls []llm.ToolCall

		err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
			debugger.WriteJSON(resp)
			if !started {
				started = true
				startResultCh <- nil
			}

			if resp.Message.Thinking != "" {
				thoughtsCount++
				chunkCh <- llm.NewThinkingChunk(resp.Message.Thinking)
			}
			if resp.Message.Content != "" {
				chunkCh <- llm.NewTextChunk(resp.Message.Content)
			}

			for _, tc := range resp.Message.ToolCalls {
				argsB, err := json.Marshal(tc.Function.Arguments)
				if err != nil {
					slog.WarnContext(ctx, "Failed to marshal tool call arguments", "provider", "ollama", "error", err)
					argsB = []byte("{}")
				}
				toolCalls = append(toolCalls, llm.ToolCall{
					ID:        tc.ID,
					Name:      tc.Function.Name,
					Arguments: string(argsB),
				})
			}

			if resp.Done {
				finish := llm.StopReasonStop
				if resp.DoneReason == llm.StopReasonLength {
					finish = llm.StopReasonLength
				}
				if len(toolCalls) > 0 {
					chunkCh <- llm.NewToolCallChunk(toolCalls...)
					finish = llm.StopReasonToolCall
				}
				usage := &llm.LLMUsage{
					PromptTokens:     resp.PromptEvalCount,
					CompletionTokens: resp.EvalCount,
					TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
					ThoughtsTokens:   thoughtsCount,
					StopReason:       finish,
				}
				llm.LogUsage(ctx, o.model, usage)
				chunkCh <- llm.NewFinalChunk(finish, usage)
			}
			return nil
		})

		if err != nil {
			slog.ErrorContext(ctx, "Stream error", "provider", "ollama", "model", o.model, "error", err)
			if !started {
				startResultCh <- err
				return
			}
			chunkCh <- llm.NewErrorChunk(fmt.Sprintf("Stream interrupted: %v", err), err)
			return
		}
		if !started {
			startResultCh <- nil
		}
	}()

	select {
	case err := <-startResultCh:
		if err != nil {
			return nil, err
		}
		return chunkCh, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// convertMessages converts messages to Ollama API format
func convertMessages(messages []llm.Message) []api.Message {
	out := make([]api.Message, 0, len(messages))

	for _, m := range messages {
		var text strings.Builder
		var images []api.ImageData

		for _, block := range m.Content {
			switch block.Type {
			case llm.BlockTypeText:
				text.WriteString(block.Text)
			case llm.BlockTypeImage:
				if block.Source != nil && len(block.Source.Data) > 0 {
					images = append(images, block.Source.Data)
				}
			}
		}

		msg := api.Message{
			Role:    m.Role,
			Content: text.String(),
			Images:  images,
		}

		for _, tc := range m.ToolCalls {
			var args api.ToolCallFunctionArguments
			if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
				slog.Warn("Failed to decode tool arguments for history", "provider", "ollama", "error", err)
			}
			msg.ToolCalls = append(msg.ToolCalls, api.ToolCall{
				ID: tc.ID,
				Function: api.ToolCallFunction{
					Name:      tc.Name,
					Arguments: args,
				},
			})
		}

		if m.Role == llm.RoleTool {
			msg.ToolCallID = m.ToolCallID
		}

		out = append(out, msg)
	}

	return out
}

// IsTransientError implements the llm.LLMClient interface
func (o *OllamaClient) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "overloaded")
}

//----------------------------------------------------------------
// JSONFixingRoundTripper
//----------------------------------------------------------------

// JSONFixingRoundTripper strips illegal escapes (e.g. \$) some local models
// emit inside streamed JSON.
type JSONFixingRoundTripper struct {
	Proxied http.RoundTripper
}

func (j *JSONFixingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := j.Proxied.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	ct := resp.Header.Get("Content-Type")
	if strings.Contains(ct, "application/json") || strings.Contains(ct, "application/x-ndjson") {
		resp.Body = &jsonFixingReadCloser{body: resp.Body}
	}
	return resp, nil
}

type jsonFixingReadCloser struct {
	body io.ReadCloser
}

var illegalEscapeRegex = regexp.MustCompile(`\\([^\/\\bfnrtu"])`)

func (j *jsonFixingReadCloser) Read(p []byte) (int, error) {
	n, err := j.body.Read(p)
	if n > 0 {
		fixed := illegalEscapeRegex.ReplaceAll(p[:n], []byte("$1"))
		if len(fixed) < n {
			n = copy(p, fixed)
		}
	}
	return n, err
}

func (j *jsonFixingReadCloser) Close() error {
	return j.body.Close()
}
