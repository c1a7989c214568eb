package ollama

import (
	"log/slog"

	"scriptura/pkg/config"
	"scriptura/pkg/llm"
)

// OllamaFactory handles creation of Ollama Clients
type OllamaFactory struct{}

// Create implements ProviderFactory. Without a base_url the system-wide
// ollama_default_url is used.
func (f *OllamaFactory) Create(cfg llm.ProviderGroupConfig, sys *config.SystemConfig) ([]llm.LLMClient, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = sys.OllamaDefaultURL
	}

	options := make(map[string]any, len(cfg.Options)+1)
	for k, v := range cfg.Options {
		if k == "thinking_effort" {
			continue
		}
		options[k] = v
	}
	if cfg.Temperature != nil {
		options["temperature"] = *cfg.Temperature
	}

	var clients []llm.LLMClient
	for _, model := range cfg.Models {
		client, err := NewOllamaClient(model, baseURL, options)
		if err != nil {
			slog.Error("Failed to create Ollama client", "model", model, "error", err)
			continue
		}
		client.debugEnabled = sys.DebugChunks
		clients = append(clients, client)
	}
	return clients, nil
}

func init() {
	llm.RegisterProvider("ollama", &OllamaFactory{})
}
