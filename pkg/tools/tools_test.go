package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"scriptura/pkg/api"
	"scriptura/pkg/llm"
	"scriptura/pkg/scripture"
	"scriptura/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRegistry(t *testing.T) *Registry {
	t.Helper()
	s := store.New(store.NewMemoryDriver(store.SampleFixture()))
	t.Cleanup(func() { _ = s.Close() })
	return NewScriptureRegistry(s, "BSB", nil)
}

func call(name, args string) llm.ToolCall {
	return llm.ToolCall{ID: "call-1", Name: name, Arguments: args}
}

func TestDeclarationsSortedWithSchemas(t *testing.T) {
	defs := sampleRegistry(t).Declarations()
	require.Len(t, defs, 3)

	assert.Equal(t, "list_available_translations", defs[0].Name)
	assert.Equal(t, "scripture_lookup", defs[1].Name)
	assert.Equal(t, "semantic_search", defs[2].Name)

	lookup := defs[1].Parameters
	assert.Equal(t, "object", lookup["type"])
	assert.ElementsMatch(t, []any{"book", "chapter"}, lookup["required"])
	props, ok := lookup["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "verse")

	_, ok = defs[0].Parameters["properties"].(map[string]any)
	assert.True(t, ok, "argument-less tools still declare an empty properties object")
}

func TestScriptureLookup(t *testing.T) {
	reg := sampleRegistry(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args string
		want string
	}{
		{
			name: "single verse defaults translation",
			args: `{"book":"John","chapter":3,"verse":16}`,
			want: "(BSB) John 3:16. For God so loved the world that He gave His one and only Son, that everyone who believes in Him shall not perish but have eternal life.",
		},
		{
			name: "chapter ordered by verse",
			args: `{"translation":"kjv","book":"Psalms","chapter":117}`,
			want: "(KJV) Psalms 117:1. O praise the LORD, all ye nations: praise him, all ye people.\n" +
				"(KJV) Psalms 117:2. For his merciful kindness is great toward us: and the truth of the LORD endureth for ever. Praise ye the LORD.",
		},
		{
			name: "book not found",
			args: `{"book":"Hezekiah","chapter":1,"verse":1}`,
			want: "Book 'Hezekiah' not found.",
		},
		{
			name: "verse not found",
			args: `{"book":"John","chapter":3,"verse":99}`,
			want: "Verse not found.",
		},
		{
			name: "chapter not found",
			args: `{"book":"John","chapter":21}`,
			want: "Chapter not found.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := reg.Execute(ctx, call("scripture_lookup", tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestScriptureLookupStoreOnly(t *testing.T) {
	reg := sampleRegistry(t)

	for _, code := range []string{"XYZ", "NIV", "ESV"} {
		out, err := reg.Execute(context.Background(),
			call("scripture_lookup", `{"translation":"`+strings.ToLower(code)+`","book":"John","chapter":3,"verse":16}`))
		require.NoError(t, err)

		assert.Contains(t, out, code)
		assert.Contains(t, out, "available")
		assert.Contains(t, out, "BSB, KJV")
		assert.NotContains(t, out, "loved the world")
	}
}

func TestListTranslationsIdempotent(t *testing.T) {
	reg := sampleRegistry(t)

	first, err := reg.Execute(context.Background(), call("list_available_translations", ""))
	require.NoError(t, err)
	second, err := reg.Execute(context.Background(), call("list_available_translations", "{}"))
	require.NoError(t, err)

	assert.Equal(t, "BSB, KJV", first)
	assert.Equal(t, first, second)
}

func TestListTranslationsEmptyStore(t *testing.T) {
	s := store.New(store.NewMemoryDriver(&store.Fixture{}))
	out, err := NewTranslationsTool(s).Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "(none found)", out)
}

func TestSemanticSearchStub(t *testing.T) {
	out, err := sampleRegistry(t).Execute(context.Background(), call("semantic_search", `{"query":"forgiveness"}`))
	require.NoError(t, err)
	assert.Equal(t, "Semantic search results for: forgiveness", out)
}

func TestSoftFailuresBecomeText(t *testing.T) {
	reg := sampleRegistry(t)

	tests := []struct {
		name string
		call llm.ToolCall
		want string
	}{
		{"unknown tool", call("delete_everything", "{}"), "unknown tool 'delete_everything'"},
		{"bad json", call("scripture_lookup", `{"book":`), "not a JSON object"},
		{"missing required", call("scripture_lookup", `{"book":"John"}`), "missing required field: chapter"},
		{"wrong type", call("scripture_lookup", `{"book":"John","chapter":"three"}`), "expected integer"},
		{"fractional chapter", call("scripture_lookup", `{"book":"John","chapter":3.5}`), "expected integer"},
		{"below minimum", call("scripture_lookup", `{"book":"John","chapter":3,"verse":0}`), "must be >= 1"},
		{"empty query", call("semantic_search", `{"query":"  "}`), "query must not be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := reg.Execute(context.Background(), tt.call)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(out, "Error:"), out)
			assert.Contains(t, out, tt.want)
		})
	}
}

type brokenResolver struct{ err error }

func (b brokenResolver) Resolve(context.Context, scripture.Query) (scripture.Passage, error) {
	return scripture.Passage{}, b.err
}

func (b brokenResolver) Translations(context.Context) ([]string, error) {
	return nil, b.err
}

func TestHardFailuresAreWrapped(t *testing.T) {
	boom := errors.New("connection refused")
	reg := NewScriptureRegistry(brokenResolver{err: boom}, "BSB", nil)

	_, err := reg.Execute(context.Background(), call("scripture_lookup", `{"book":"John","chapter":3,"verse":16}`))
	assert.ErrorIs(t, err, boom)

	_, err = reg.Execute(context.Background(), call("list_available_translations", "{}"))
	assert.ErrorIs(t, err, boom)
}

type namedTool struct{ name string }

func (n namedTool) Name() string            { return n.name }
func (n namedTool) Description() string     { return "" }
func (n namedTool) Schema() *api.JSONSchema { return nil }
func (n namedTool) Execute(context.Context, map[string]any) (string, error) {
	return n.name, nil
}

func TestRegisterRejectsInvalidTools(t *testing.T) {
	reg := NewRegistry()

	assert.Error(t, reg.Register(nil))
	assert.Error(t, reg.Register(namedTool{}))
	require.NoError(t, reg.Register(namedTool{name: "echo"}))
	assert.Error(t, reg.Register(namedTool{name: "echo"}))

	got, ok := reg.Get("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", got.Name())
	assert.Equal(t, []string{"echo"}, reg.Names())
}

func TestDefaultValidatorEnum(t *testing.T) {
	schema := &api.JSONSchema{
		Type: "object",
		Properties: map[string]*api.Property{
			"mode": {Type: "string", Enum: []string{"a", "b"}},
		},
	}
	v := DefaultValidator{}
	assert.NoError(t, v.Validate(map[string]any{"mode": "a"}, schema))
	assert.Error(t, v.Validate(map[string]any{"mode": "c"}, schema))
	assert.NoError(t, v.Validate(nil, nil))
}

func TestPreviewTruncates(t *testing.T) {
	long := strings.Repeat("x", 500)
	assert.Len(t, []rune(preview(long)), previewLen+3)
	assert.Equal(t, "short", preview("short"))
}
