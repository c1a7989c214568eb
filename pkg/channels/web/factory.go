package web

import (
	"fmt"

	"scriptura/pkg/api"
	"scriptura/pkg/channels"

	jsoniter "github.com/json-iterator/go"
)

// WebFactory builds the HTTP/WebSocket channel.
type WebFactory struct{}

// Create implements channels.ChannelFactory.
func (f *WebFactory) Create(rawConfig jsoniter.RawMessage, deps channels.Deps) (api.Channel, error) {
	pCfg := WebConfig{Port: 8080}

	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &pCfg); err != nil {
			return nil, fmt.Errorf("failed to parse web config: %w", err)
		}
	}
	if pCfg.Port <= 0 || pCfg.Port > 65535 {
		return nil, fmt.Errorf("web: invalid port %d", pCfg.Port)
	}

	return NewWebChannel(pCfg, deps.Store, deps.Answerer), nil
}

func init() {
	channels.RegisterChannel("web", &WebFactory{})
}
