package tools

import (
	"context"
	"fmt"
	"strings"

	"scriptura/pkg/api"
)

// Searcher answers a thematic query with text.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// StubSearcher acknowledges the query without retrieving anything.
type StubSearcher struct{}

func (StubSearcher) Search(_ context.Context, query string) (string, error) {
	return fmt.Sprintf("Semantic search results for: %s", query), nil
}

// SearchTool exposes a Searcher as semantic_search.
type SearchTool struct {
	searcher Searcher
}

// NewSearchTool wraps s, falling back to StubSearcher when nil.
func NewSearchTool(s Searcher) *SearchTool {
	if s == nil {
		s = StubSearcher{}
	}
	return &SearchTool{searcher: s}
}

func (t *SearchTool) Name() string { return "semantic_search" }

func (t *SearchTool) Description() string {
	return "Search scripture by theme or topic, e.g. 'forgiveness' or 'God's love for the world'."
}

func (t *SearchTool) Schema() *api.JSONSchema {
	return &api.JSONSchema{
		Type: "object",
		Properties: map[string]*api.Property{
			"query": {Type: "string", Description: "Theme or question to search for."},
		},
		Required: []string{"query"},
	}
}

func (t *SearchTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query := strings.TrimSpace(stringArg(args, "query"))
	if query == "" {
		return "Error: query must not be empty", nil
	}
	return t.searcher.Search(ctx, query)
}
