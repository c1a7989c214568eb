package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"scriptura/pkg/api"
	"scriptura/pkg/scripture"
	"scriptura/pkg/store"
)

// Resolver is the part of store.Store the lookup tools need.
type Resolver interface {
	Resolve(ctx context.Context, q scripture.Query) (scripture.Passage, error)
	Translations(ctx context.Context) ([]string, error)
}

// LookupTool returns scripture text strictly from the store.
type LookupTool struct {
	store              Resolver
	defaultTranslation string
}

// NewLookupTool creates the scripture_lookup tool.
func NewLookupTool(r Resolver, defaultTranslation string) *LookupTool {
	if defaultTranslation == "" {
		defaultTranslation = scripture.DefaultTranslation
	}
	return &LookupTool{store: r, defaultTranslation: strings.ToUpper(defaultTranslation)}
}

func (t *LookupTool) Name() string { return "scripture_lookup" }

func (t *LookupTool) Description() string {
	return "Look up scripture text by reference. Returns one line per verse formatted as " +
		"'(<translation>) <book> <chapter>:<verse>. <text>'. Omit verse to get the whole chapter. " +
		"Only text returned by this tool may be quoted."
}

func (t *LookupTool) Schema() *api.JSONSchema {
	return &api.JSONSchema{
		Type: "object",
		Properties: map[string]*api.Property{
			"translation": {
				Type:        "string",
				Description: fmt.Sprintf("Translation code, e.g. BSB or KJV. Defaults to %s.", t.defaultTranslation),
			},
			"book": {
				Type:        "string",
				Description: "Book name exactly as stored, e.g. 'John', '1 John', 'Psalms'.",
			},
			"chapter": {
				Type:        "integer",
				Description: "Chapter number.",
				Minimum:     Min(1),
			},
			"verse": {
				Type:        "integer",
				Description: "Verse number. Omit for the whole chapter.",
				Minimum:     Min(1),
			},
		},
		Required: []string{"book", "chapter"},
	}
}

func (t *LookupTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	q := scripture.Query{
		Book:        strings.TrimSpace(stringArg(args, "book")),
		Chapter:     intArg(args, "chapter"),
		Verse:       intArg(args, "verse"),
		Translation: strings.ToUpper(strings.TrimSpace(stringArg(args, "translation"))),
	}
	if q.Translation == "" {
		q.Translation = t.defaultTranslation
	}
	if err := q.Validate(); err != nil {
		return "Error: " + err.Error(), nil
	}

	passage, err := t.store.Resolve(ctx, q)
	if err == nil {
		return passage.ToolFormat(), nil
	}

	var unavailable *store.TranslationUnavailableError
	switch {
	case errors.As(err, &unavailable):
		return fmt.Sprintf("Translation '%s' is not available. Available translations: %s. "+
			"Please choose one of the available translations.",
			unavailable.Requested, store.JoinCodes(unavailable.Available)), nil
	case errors.Is(err, store.ErrBookNotFound):
		return fmt.Sprintf("Book '%s' not found.", q.Book), nil
	case errors.Is(err, store.ErrVerseNotFound):
		return "Verse not found.", nil
	case errors.Is(err, store.ErrChapterNotFound):
		return "Chapter not found.", nil
	}
	return "", fmt.Errorf("lookup %s: %w", q, err)
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]any, key string) int {
	if n, ok := toFloat(args[key]); ok {
		return int(n)
	}
	return 0
}
