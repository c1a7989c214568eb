package channels

import (
	"errors"
	"testing"

	"scriptura/pkg/api"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChannel struct{ id string }

func (s *stubChannel) ID() string { return s.id }
func (s *stubChannel) Start(api.ChannelContext) error { return nil }
func (s *stubChannel) Stop() error { return nil }
func (s *stubChannel) Send(api.SessionContext, string) error { return nil }

type stubFactory struct {
	id  string
	err error
	off bool
}

func (f *stubFactory) Create(raw jsoniter.RawMessage, deps Deps) (api.Channel, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.off {
		return nil, nil
	}
	return &stubChannel{id: f.id}, nil
}

func TestLoadFromConfig(t *testing.T) {
	RegisterChannel("test-b", &stubFactory{id: "test-b"})
	RegisterChannel("test-a", &stubFactory{id: "test-a"})
	RegisterChannel("test-broken", &stubFactory{err: errors.New("bad token")})
	RegisterChannel("test-off", &stubFactory{off: true})

	got := LoadFromConfig(map[string]jsoniter.RawMessage{
		"test-b":      jsoniter.RawMessage(`{}`),
		"test-a":      jsoniter.RawMessage(`{}`),
		"test-broken": jsoniter.RawMessage(`{}`),
		"test-off":    jsoniter.RawMessage(`{}`),
		"unknown":     jsoniter.RawMessage(`{}`),
	}, Deps{})

	require.Len(t, got, 2)
	assert.Equal(t, "test-a", got[0].ID())
	assert.Equal(t, "test-b", got[1].ID())
	assert.Subset(t, RegisteredChannels(), []string{"test-a", "test-b", "test-broken", "test-off"})
}
