package telegram

import (
	"fmt"

	"scriptura/pkg/api"
	"scriptura/pkg/channels"
	"scriptura/pkg/config"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TelegramFactory builds Telegram channels.
type TelegramFactory struct{}

// Create implements channels.ChannelFactory.
func (f *TelegramFactory) Create(rawConfig jsoniter.RawMessage, deps channels.Deps) (api.Channel, error) {
	var tgCfg TelegramConfig
	if err := json.Unmarshal(rawConfig, &tgCfg); err != nil {
		return nil, fmt.Errorf("failed to parse telegram config: %w", err)
	}

	if tgCfg.Token == "" {
		return nil, fmt.Errorf("missing telegram token")
	}

	sys := deps.System
	if sys == nil {
		sys = config.DefaultSystemConfig()
	}
	ch, err := NewTelegramChannel(tgCfg, sys.TelegramMessageLimit)
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func init() {
	channels.RegisterChannel("telegram", &TelegramFactory{})
}
