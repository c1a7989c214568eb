package llm

import (
	"sort"
	"sync"

	"scriptura/pkg/config"
)

// ProviderGroupConfig is one entry of the "llm" array in config.json.
// Every (model, api key) pair becomes one atomic client.
type ProviderGroupConfig struct {
	Type                string         `json:"type"`
	APIKeys             []string       `json:"api_keys,omitempty"`
	Models              []string       `json:"models"`
	BaseURL             string         `json:"base_url,omitempty"`
	Temperature         *float64       `json:"temperature,omitempty"`
	UseThoughtSignature bool           `json:"use_thought_signature,omitempty"`
	Options             map[string]any `json:"options,omitempty"`
}

// ProviderFactory builds the atomic clients of a provider group.
type ProviderFactory interface {
	Create(groupConfig ProviderGroupConfig, systemConfig *config.SystemConfig) ([]LLMClient, error)
}

var (
	providerMu       sync.RWMutex
	providerRegistry = make(map[string]ProviderFactory)
)

// RegisterProvider registers a factory under name. Provider packages call it from init.
func RegisterProvider(name string, factory ProviderFactory) {
	providerMu.Lock()
	defer providerMu.Unlock()
	providerRegistry[name] = factory
}

// GetProviderFactory returns the factory registered under name.
func GetProviderFactory(name string) (ProviderFactory, bool) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	f, ok := providerRegistry[name]
	return f, ok
}

// RegisteredProviders lists the registered provider names in sorted order.
func RegisteredProviders() []string {
	providerMu.RLock()
	defer providerMu.RUnlock()
	names := make([]string, 0, len(providerRegistry))
	for name := range providerRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
