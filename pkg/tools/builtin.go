package tools

// NewScriptureRegistry builds the registry offered to the model: scripture
// lookup, translation listing and thematic search.
func NewScriptureRegistry(r Resolver, defaultTranslation string, s Searcher) *Registry {
	reg := NewRegistry()
	reg.MustRegister(
		NewLookupTool(r, defaultTranslation),
		NewTranslationsTool(r),
		NewSearchTool(s),
	)
	return reg
}
