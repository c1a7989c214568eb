package llm

import (
	"fmt"
	"log/slog"
	"time"

	"scriptura/pkg/config"

	jsoniter "github.com/json-iterator/go"
)

// Models used when config.json has no "llm" section and only an API key is exported.
const (
	DefaultGeminiModel = "gemini-2.5-flash-lite"
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultTemperature = 0.1
)

// groupsFromEnv synthesizes a provider group from exported API keys.
func groupsFromEnv() []ProviderGroupConfig {
	temperature := DefaultTemperature
	if key := config.ProviderAPIKey("gemini"); key != "" {
		return []ProviderGroupConfig{{Type: "gemini", APIKeys: []string{key}, Models: []string{DefaultGeminiModel}, Temperature: &temperature}}
	}
	if key := config.ProviderAPIKey("openai"); key != "" {
		return []ProviderGroupConfig{{Type: "openai", APIKeys: []string{key}, Models: []string{DefaultOpenAIModel}, Temperature: &temperature}}
	}
	return nil
}

// NewFromConfig builds the reasoning client from the "llm" config array.
// Several atomic clients are wrapped in a FallbackClient.
func NewFromConfig(rawLLM jsoniter.RawMessage, system *config.SystemConfig) (LLMClient, error) {
	var groups []ProviderGroupConfig
	if len(rawLLM) > 0 && string(rawLLM) != "null" {
		if err := json.Unmarshal(rawLLM, &groups); err != nil {
			return nil, fmt.Errorf("failed to parse 'llm' config: %w", err)
		}
	} else {
		groups = groupsFromEnv()
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("missing 'llm' config")
	}

	var allAtomicClients []LLMClient
	for _, group := range groups {
		if len(group.APIKeys) == 0 {
			if key := config.ProviderAPIKey(group.Type); key != "" {
				group.APIKeys = []string{key}
			}
		}

		slog.Info("Loading LLM group", "type", group.Type, "models", len(group.Models))

		factory, ok := GetProviderFactory(group.Type)
		if !ok {
			slog.Warn("Unknown provider type", "type", group.Type, "registered", RegisteredProviders())
			continue
		}

		clients, err := factory.Create(group, system)
		if err != nil {
			slog.Warn("Failed to create clients", "type", group.Type, "error", err)
			continue
		}

		allAtomicClients = append(allAtomicClients, clients...)
	}

	if len(allAtomicClients) == 0 {
		return nil, fmt.Errorf("no LLM clients could be initialized")
	}

	slog.Info("LLM clients initialized", "count", len(allAtomicClients))

	if len(allAtomicClients) == 1 {
		return allAtomicClients[0], nil
	}

	return &FallbackClient{
		Clients:    allAtomicClients,
		MaxRetries: system.MaxRetries,
		RetryDelay: time.Duration(system.RetryDelayMs) * time.Millisecond,
	}, nil
}
