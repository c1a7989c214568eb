package tools

import (
	"context"
	"fmt"

	"scriptura/pkg/api"
	"scriptura/pkg/store"
)

// TranslationsTool lists the translation codes present in the store.
type TranslationsTool struct {
	store Resolver
}

func NewTranslationsTool(r Resolver) *TranslationsTool {
	return &TranslationsTool{store: r}
}

func (t *TranslationsTool) Name() string { return "list_available_translations" }

func (t *TranslationsTool) Description() string {
	return "List the translation codes available in the scripture store, comma separated."
}

func (t *TranslationsTool) Schema() *api.JSONSchema {
	return &api.JSONSchema{Type: "object", Properties: map[string]*api.Property{}}
}

func (t *TranslationsTool) Execute(ctx context.Context, _ map[string]any) (string, error) {
	codes, err := t.store.Translations(ctx)
	if err != nil {
		return "", fmt.Errorf("list translations: %w", err)
	}
	return store.JoinCodes(codes), nil
}
