package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"scriptura/pkg/llm"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/genai"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Content.Role is a plain string in the SDK.
const (
	roleUser  = "user"
	roleModel = "model"
)

// GeminiClient Google Gemini API client
type GeminiClient struct {
	client       *genai.Client
	model        string
	temperature  *float32
	useThought   bool
	debugEnabled bool
}

// NewGeminiClient creates a Gemini client with a single model and API key
func NewGeminiClient(apiKey, model string, temperature *float64, useThought, debug bool) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	g := &GeminiClient{
		client:       client,
		model:        model,
		useThought:   useThought,
		debugEnabled: debug,
	}
	if temperature != nil {
		g.temperature = genai.Ptr(float32(*temperature))
	}
	return g, nil
}

func (g *GeminiClient) Provider() string {
	return "gemini"
}

// formatModality formats ModalityTokenCount array for logging
func formatModality(details []*genai.ModalityTokenCount) string {
	if len(details) == 0 {
		return "0"
	}
	var res []string
	for _, d := range details {
		res = append(res, fmt.Sprintf("%v: %d", d.Modality, d.TokenCount))
	}
	return strings.Join(res, " | ")
}

// convertTools maps tool declarations to one genai.Tool.
func convertTools(tools []llm.ToolDefinition) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	fds := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		fds = append(fds, &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: t.Parameters,
		})
	}
	return []*genai.Tool{{FunctionDeclarations: fds}}
}

// StreamChat implements llm.LLMClient.StreamChat
func (g *GeminiClient) StreamChat(ctx context.Context, messages []llm.Message, tools []llm.ToolDefinition) (<-chan llm.StreamChunk, error) {
	apiMessages, systemInstruction := convertMessages(messages)

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
		Tools:             convertTools(tools),
		Temperature:       g.temperature,
	}
	if g.useThought {
		genCfg.ThinkingConfig = &genai.ThinkingConfig{IncludeThoughts: true}
	}

	chunkCh := make(chan llm.StreamChunk, 100)
	startResultCh := make(chan error, 1)

	slog.DebugContext(ctx, "Gemini streaming", "model", g.model, "messages", len(apiMessages), "tools", len(tools))

	go func() {
		defer close(chunkCh)

		debugger := llm.NewStreamDebugger(ctx, "gemini", g.debugEnabled)
		defer debugger.Close()

		started := false
		var lastUsage *llm.LLMUsage
		finish := llm.StopReasonStop

		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, apiMessages, genCfg) {
			debugger.WriteJSON(resp)
			if err != nil {
				if resp == nil {
					if !started {
						startResultCh <- err
					} else {
						chunkCh <- llm.NewErrorChunk(fmt.Sprintf("Stream interrupted: %v", err), err)
					}
					return
				}
				// The iterator can hand back data together with an error; keep the data.
				slog.WarnContext(ctx, "Gemini stream error with data", "error", err)
			}

			if !started {
				started = true
				startResultCh <- nil
			}

			if resp.UsageMetadata != nil {
				u := resp.UsageMetadata
				lastUsage = &llm.LLMUsage{
					PromptTokens:     int(u.PromptTokenCount),
					PromptDetail:     formatModality(u.PromptTokensDetails),
					CompletionTokens: int(u.CandidatesTokenCount),
					CompletionDetail: formatModality(u.CandidatesTokensDetails),
					TotalTokens:      int(u.TotalTokenCount),
					ThoughtsTokens:   int(u.ThoughtsTokenCount),
					CachedTokens:     int(u.CachedContentTokenCount),
				}
			}

			for _, candidate := range resp.Candidates {
				if candidate.FinishReason == genai.FinishReasonMaxTokens {
					finish = llm.StopReasonLength
				}

				if candidate.Content == nil {
					continue
				}

				var blocks []llm.ContentBlock
				var toolCalls []llm.ToolCall

				for _, part := range candidate.Content.Parts {
					if part.Text != "" {
						if part.Thought {
							blocks = append(blocks, llm.NewThinkingBlock(part.Text))
						} else {
							blocks = append(blocks, llm.NewTextBlock(part.Text))
						}
					}

					if part.FunctionCall != nil {
						argsB, _ := json.Marshal(part.FunctionCall.Args)
						toolCalls = append(toolCalls, llm.ToolCall{
							ID:        part.FunctionCall.ID, // often empty on the Gemini API
							Name:      part.FunctionCall.Name,
							Arguments: string(argsB),
							// The original part carries the thought signature needed on replay.
							Meta: map[string]any{"gemini_part": part},
						})
						finish = llm.StopReasonToolCall
					}
				}

				if len(blocks) > 0 || len(toolCalls) > 0 {
					chunkCh <- llm.StreamChunk{
						ContentBlocks: blocks,
						ToolCalls:     toolCalls,
					}
				}
			}
		}

		if !started {
			startResultCh <- nil
		}
		if lastUsage != nil {
			lastUsage.StopReason = finish
			llm.LogUsage(ctx, g.model, lastUsage)
		}
		chunkCh <- llm.NewFinalChunk(finish, lastUsage)
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

// convertMessages converts message list to GenAI format. Consecutive tool
// results are folded into one user turn, as Gemini expects one response part
// per function call of the preceding model turn.
func convertMessages(messages []llm.Message) ([]*genai.Content, *genai.Content) {
	var contents []*genai.Content
	var systemInstruction *genai.Content

	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			var parts []*genai.Part
			for _, block := range msg.Content {
				if block.Type == llm.BlockTypeText && block.Text != "" {
					parts = append(parts, &genai.Part{Text: block.Text})
				}
			}
			if len(parts) > 0 {
				if systemInstruction == nil {
					systemInstruction = &genai.Content{}
				}
				systemInstruction.Parts = append(systemInstruction.Parts, parts...)
			}
			continue

		case llm.RoleTool:
			part := &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:       msg.ToolCallID,
					Name:     msg.ToolName,
					Response: map[string]any{"result": msg.GetTextContent()},
				},
			}
			if n := len(contents); n > 0 && isFunctionResponseTurn(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
			} else {
				contents = append(contents, &genai.Content{Role: roleUser, Parts: []*genai.Part{part}})
			}
			continue
		}

		role := roleUser
		if msg.Role == llm.RoleAssistant {
			role = roleModel
		}

		var parts []*genai.Part
		for _, block := range msg.Content {
			switch block.Type {
			case llm.BlockTypeText:
				if block.Text != "" {
					parts = append(parts, &genai.Part{Text: block.Text})
				}
			case llm.BlockTypeThinking:
				if block.Text != "" {
					parts = append(parts, &genai.Part{Text: block.Text, Thought: true})
				}
			case llm.BlockTypeImage:
				if block.Source != nil && len(block.Source.Data) > 0 {
					parts = append(parts, &genai.Part{
						InlineData: &genai.Blob{
							MIMEType: block.Source.MediaType,
							Data:     block.Source.Data,
						},
					})
				}
			}
		}

		for _, tc := range msg.ToolCalls {
			if orig, ok := tc.Meta["gemini_part"].(*genai.Part); ok && orig.FunctionCall != nil {
				fc := *orig.FunctionCall
				fc.ID = tc.ID
				p := *orig
				p.FunctionCall = &fc
				parts = append(parts, &p)
				continue
			}
			var args map[string]any
			_ = json.Unmarshal([]byte(tc.Arguments), &args)
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args},
			})
		}

		if len(parts) > 0 {
			contents = append(contents, &genai.Content{Role: role, Parts: parts})
		}
	}

	return contents, systemInstruction
}

func isFunctionResponseTurn(c *genai.Content) bool {
	if c.Role != roleUser || len(c.Parts) == 0 {
		return false
	}
	for _, p := range c.Parts {
		if p.FunctionResponse == nil {
			return false
		}
	}
	return true
}

// IsTransientError implements the llm.LLMClient interface
func (g *GeminiClient) IsTransientError(err error) bool {
	return llm.IsTransientMessage(err)
}
