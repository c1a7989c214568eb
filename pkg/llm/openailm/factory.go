package openailm

import (
	"fmt"

	"scriptura/pkg/config"
	"scriptura/pkg/llm"
)

// OpenAIFactory handles creation of OpenAI Clients
type OpenAIFactory struct{}

// Create implements ProviderFactory. Only the first key is used.
func (f *OpenAIFactory) Create(cfg llm.ProviderGroupConfig, sys *config.SystemConfig) ([]llm.LLMClient, error) {
	if len(cfg.APIKeys) == 0 && cfg.BaseURL == "" {
		return nil, fmt.Errorf("openai: no api key (set api_keys or OPENAI_API_KEY)")
	}
	apiKey := ""
	if len(cfg.APIKeys) > 0 {
		apiKey = cfg.APIKeys[0]
	}

	var clients []llm.LLMClient
	for _, model := range cfg.Models {
		client := NewClient("openai", apiKey, model, cfg.BaseURL, cfg.Temperature, cfg.Options)
		client.debugEnabled = sys.DebugChunks
		clients = append(clients, client)
	}
	return clients, nil
}

func init() {
	llm.RegisterProvider("openai", &OpenAIFactory{})
}
