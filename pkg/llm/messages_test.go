package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendBlockMergesDeltas(t *testing.T) {
	var m Message
	m.AppendBlock(NewThinkingBlock("let me "))
	m.AppendBlock(NewThinkingBlock("think"))
	m.AppendBlock(NewTextBlock("John 3:16 "))
	m.AppendBlock(NewTextBlock("says..."))
	m.AppendBlock(NewImageBlock([]byte{1}, "image/png"))
	m.AppendBlock(NewImageBlock([]byte{2}, "image/png"))

	require.Len(t, m.Content, 4)
	assert.Equal(t, "let me think", m.Content[0].Text)
	assert.Equal(t, "John 3:16 says...", m.Content[1].Text)
	assert.Equal(t, "John 3:16 says...", m.GetTextContent())
}

func TestFlattenText(t *testing.T) {
	tests := []struct {
		name    string
		content []ContentBlock
		want    string
	}{
		{"empty", nil, ""},
		{"single text", []ContentBlock{NewTextBlock("In the beginning")}, "In the beginning"},
		{
			"thinking dropped",
			[]ContentBlock{NewThinkingBlock("hmm"), NewTextBlock("answer")},
			"answer",
		},
		{
			"parts joined by newline",
			[]ContentBlock{NewTextBlock("a"), {Type: BlockTypeError, Text: "b"}},
			"a\nb",
		},
		{
			"image placeholder",
			[]ContentBlock{NewTextBlock("see"), NewImageBlock([]byte{0}, "image/jpeg")},
			"see\n[image: image/jpeg]",
		},
		{"unknown type keeps text", []ContentBlock{{Type: "citation", Text: "Gen 1:1"}}, "Gen 1:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlattenText(tt.content))
		})
	}
}

func TestImageSourceJSON(t *testing.T) {
	in := NewImageBlock([]byte("png-bytes"), "image/png")

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"data":"cG5nLWJ5dGVz"`)

	var out ContentBlock
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotNil(t, out.Source)
	assert.Equal(t, []byte("png-bytes"), out.Source.Data)
	assert.Equal(t, "image/png", out.Source.MediaType)
}

func TestNewToolResultMessage(t *testing.T) {
	call := ToolCall{ID: "call_1", Name: "scripture_lookup"}
	msg := NewToolResultMessage(call, "(KJV) John 3:16. For God so loved...")

	assert.Equal(t, RoleTool, msg.Role)
	assert.Equal(t, "call_1", msg.ToolCallID)
	assert.Equal(t, "scripture_lookup", msg.ToolName)
	assert.Equal(t, "(KJV) John 3:16. For God so loved...", msg.GetTextContent())
}

func TestConversation(t *testing.T) {
	c := NewConversation("ab12", NewSystemMessage("sys"))
	c.Append(NewUserMessage("q"))

	assert.Equal(t, 2, c.Len())
	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, RoleUser, last.Role)

	msgs := c.Messages()
	msgs[0].Role = "mutated"
	assert.Equal(t, RoleSystem, c.Messages()[0].Role, "Messages returns a copy")

	_, ok = NewConversation("x").Last()
	assert.False(t, ok)
}
