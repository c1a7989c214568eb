// Package autoload registers every built-in LLM provider.
package autoload

import (
	_ "scriptura/pkg/llm/gemini"
	_ "scriptura/pkg/llm/ollama"
	_ "scriptura/pkg/llm/openailm"
)
