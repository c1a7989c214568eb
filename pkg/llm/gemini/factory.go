package gemini

import (
	"fmt"

	"scriptura/pkg/config"
	"scriptura/pkg/llm"
)

// GeminiFactory handles creation of Gemini Clients
type GeminiFactory struct{}

// Create implements ProviderFactory
func (f *GeminiFactory) Create(cfg llm.ProviderGroupConfig, sys *config.SystemConfig) ([]llm.LLMClient, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("gemini: no api key (set api_keys or GEMINI_API_KEY)")
	}

	useThought := false
	if effort, ok := cfg.Options["thinking_effort"].(string); ok && effort != "" && effort != "off" {
		useThought = true
	}

	// Cartesian product: models x keys, models first.
	var clients []llm.LLMClient
	for _, model := range cfg.Models {
		for _, key := range cfg.APIKeys {
			client, err := NewGeminiClient(key, model, cfg.Temperature, useThought, sys.DebugChunks)
			if err != nil {
				return nil, err
			}
			clients = append(clients, client)
		}
	}
	return clients, nil
}

func init() {
	llm.RegisterProvider("gemini", &GeminiFactory{})
}
