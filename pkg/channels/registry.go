package channels

import (
	"sort"
	"sync"

	"scriptura/pkg/api"
	"scriptura/pkg/config"
	"scriptura/pkg/store"

	jsoniter "github.com/json-iterator/go"
)

// Deps are the shared resources a channel may need.
type Deps struct {
	System   *config.SystemConfig
	Store    *store.Store
	Answerer api.Answerer
}

// ChannelFactory creates a platform-specific channel from its raw JSON
// section of config.json.
type ChannelFactory interface {
	// Create may return (nil, nil) when the section disables the channel.
	Create(rawConfig jsoniter.RawMessage, deps Deps) (api.Channel, error)
}

var (
	registryMu      sync.RWMutex
	channelRegistry = make(map[string]ChannelFactory)
)

// RegisterChannel adds a factory. It is called from the init() of each
// channel package.
func RegisterChannel(name string, factory ChannelFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	channelRegistry[name] = factory
}

// GetChannelFactory retrieves a registered ChannelFactory by platform name.
func GetChannelFactory(name string) (ChannelFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := channelRegistry[name]
	return f, ok
}

// RegisteredChannels lists the known platform names, sorted.
func RegisteredChannels() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(channelRegistry))
	for name := range channelRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
