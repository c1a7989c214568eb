package llm

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

//----------------------------------------------------------------
// Message - provider-neutral conversation entry
//----------------------------------------------------------------

// Message represents one entry of a conversation.
type Message struct {
	Role      string         `json:"role"`    // "user", "assistant", "system", "tool"
	Content   []ContentBlock `json:"content"` // ordered content blocks
	Timestamp int64          `json:"timestamp,omitempty"`

	// ToolCalls holds the tool invocations requested by the model (role: assistant).
	// Order is the order the model emitted them.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID and ToolName link a tool result (role: tool) to its request.
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
}

// ToolCall is a request from the model to run a named tool.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // raw JSON object

	// Meta keeps provider-specific data (e.g. Gemini's thought signature) needed
	// to echo the call back. Never serialized.
	Meta map[string]any `json:"-"`
}

// ToolDefinition is the declaration of a tool offered to the model.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON schema object
}

//----------------------------------------------------------------
// ContentBlock
//----------------------------------------------------------------

// ContentBlock is one typed piece of message content.
type ContentBlock struct {
	Type string `json:"type"` // see BlockType constants

	// Text is set for "text", "thinking" and "error" blocks.
	Text string `json:"text,omitempty"`

	// Source is set for "image" blocks.
	Source *ImageSource `json:"source,omitempty"`
}

// ImageSource is the payload of an image block.
type ImageSource struct {
	Type      string `json:"type"`       // "base64" | "url"
	MediaType string `json:"media_type"` // "image/jpeg", "image/png", etc.
	Data      []byte `json:"-"`
	URL       string `json:"url,omitempty"`
}

type imageSourceJSON struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

// MarshalJSON encodes Data as base64.
func (is *ImageSource) MarshalJSON() ([]byte, error) {
	out := imageSourceJSON{Type: is.Type, MediaType: is.MediaType, URL: is.URL}
	if len(is.Data) > 0 {
		out.Data = base64.StdEncoding.EncodeToString(is.Data)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes base64 data back into Data.
func (is *ImageSource) UnmarshalJSON(data []byte) error {
	var aux imageSourceJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	is.Type, is.MediaType, is.URL = aux.Type, aux.MediaType, aux.URL
	if aux.Data != "" {
		decoded, err := base64.StdEncoding.DecodeString(aux.Data)
		if err != nil {
			return err
		}
		is.Data = decoded
	}
	return nil
}

//----------------------------------------------------------------
// StreamChunk
//----------------------------------------------------------------

// StreamChunk is one incremental piece of a streamed model response.
type StreamChunk struct {
	// ContentBlocks only carries new content.
	ContentBlocks []ContentBlock `json:"content_blocks,omitempty"`

	// ToolCalls carries complete tool calls as soon as the provider finishes them.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	IsFinal      bool      `json:"is_final"`
	FinishReason string    `json:"finish_reason,omitempty"`
	Usage        *LLMUsage `json:"usage,omitempty"`

	// Err is set when the stream broke after it started. The step has failed.
	Err error `json:"-"`
}

//----------------------------------------------------------------
// Helper Functions - Message
//----------------------------------------------------------------

// NewTextMessage creates a single-text-block message.
func NewTextMessage(role, text string) Message {
	return Message{
		Role:      role,
		Content:   []ContentBlock{NewTextBlock(text)},
		Timestamp: time.Now().Unix(),
	}
}

// NewSystemMessage creates a system message.
func NewSystemMessage(text string) Message {
	return NewTextMessage(RoleSystem, text)
}

// NewUserMessage creates a user message.
func NewUserMessage(text string) Message {
	return NewTextMessage(RoleUser, text)
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(text string) Message {
	return NewTextMessage(RoleAssistant, text)
}

// NewToolResultMessage creates the tool message answering call.
func NewToolResultMessage(call ToolCall, text string) Message {
	msg := NewTextMessage(RoleTool, text)
	msg.ToolCallID = call.ID
	msg.ToolName = call.Name
	return msg
}

// AppendBlock adds block to the message. Text, thinking and error deltas are
// merged into the previous block when it has the same type, so streamed
// fragments reassemble into contiguous text.
func (m *Message) AppendBlock(block ContentBlock) {
	if n := len(m.Content); n > 0 && block.Source == nil {
		last := &m.Content[n-1]
		if last.Type == block.Type && last.Source == nil && block.Type != BlockTypeImage {
			last.Text += block.Text
			return
		}
	}
	m.Content = append(m.Content, block)
}

// GetTextContent concatenates the text blocks (thinking excluded).
func (m *Message) GetTextContent() string {
	var sb strings.Builder
	for _, block := range m.Content {
		if block.Type == BlockTypeText {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// HasToolCalls reports whether the model asked for tools.
func (m *Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// FlattenText converts structured content into the final answer string.
// Text and error blocks contribute their text, images a short placeholder and
// thinking blocks nothing. Parts are joined with "\n".
func FlattenText(content []ContentBlock) string {
	parts := make([]string, 0, len(content))
	for _, block := range content {
		switch block.Type {
		case BlockTypeText, BlockTypeError:
			if block.Text != "" {
				parts = append(parts, block.Text)
			}
		case BlockTypeImage:
			mime := "unknown"
			if block.Source != nil && block.Source.MediaType != "" {
				mime = block.Source.MediaType
			}
			parts = append(parts, fmt.Sprintf("[image: %s]", mime))
		case BlockTypeThinking:
		default:
			if block.Text != "" {
				parts = append(parts, block.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

//----------------------------------------------------------------
// Helper Functions - ContentBlock
//----------------------------------------------------------------

// NewTextBlock creates a text block.
func NewTextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockTypeText, Text: text}
}

// NewThinkingBlock creates a thinking block.
func NewThinkingBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockTypeThinking, Text: text}
}

// NewImageBlock creates an inline (base64) image block.
func NewImageBlock(data []byte, mimeType string) ContentBlock {
	return ContentBlock{
		Type: BlockTypeImage,
		Source: &ImageSource{
			Type:      "base64",
			MediaType: mimeType,
			Data:      data,
		},
	}
}

//----------------------------------------------------------------
// Helper Functions - StreamChunk
//----------------------------------------------------------------

// NewTextChunk creates a text delta chunk.
func NewTextChunk(text string) StreamChunk {
	return StreamChunk{ContentBlocks: []ContentBlock{NewTextBlock(text)}}
}

// NewThinkingChunk creates a thinking delta chunk.
func NewThinkingChunk(text string) StreamChunk {
	return StreamChunk{ContentBlocks: []ContentBlock{NewThinkingBlock(text)}}
}

// NewToolCallChunk creates a chunk carrying finished tool calls.
func NewToolCallChunk(calls ...ToolCall) StreamChunk {
	return StreamChunk{ToolCalls: calls}
}

// NewErrorChunk reports a broken stream. The text is shown to the user only
// when the caller decides to surface it.
func NewErrorChunk(text string, err error) StreamChunk {
	return StreamChunk{
		ContentBlocks: []ContentBlock{{Type: BlockTypeError, Text: text}},
		Err:           err,
	}
}

// NewFinalChunk creates the terminating chunk with usage statistics.
func NewFinalChunk(reason string, usage *LLMUsage) StreamChunk {
	return StreamChunk{
		IsFinal:      true,
		FinishReason: reason,
		Usage:        usage,
	}
}
