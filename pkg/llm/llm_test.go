package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"scriptura/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	errs      []error
	calls     int
	transient bool
}

func (s *stubClient) StreamChat(ctx context.Context, messages []Message, tools []ToolDefinition) (<-chan StreamChunk, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	ch := make(chan StreamChunk, 2)
	ch <- NewTextChunk("ok")
	ch <- NewFinalChunk(StopReasonStop, nil)
	close(ch)
	return ch, nil
}

func (s *stubClient) IsTransientError(err error) bool { return s.transient }

func TestFallbackClientRetriesThenFallsBack(t *testing.T) {
	first := &stubClient{errs: []error{errors.New("503"), errors.New("503")}, transient: true}
	second := &stubClient{}

	f := &FallbackClient{Clients: []LLMClient{first, second}, MaxRetries: 2, RetryDelay: time.Millisecond}
	ch, err := f.StreamChat(context.Background(), nil, nil)
	require.NoError(t, err)

	var got []StreamChunk
	for c := range ch {
		got = append(got, c)
	}
	assert.Len(t, got, 2)
	assert.Equal(t, 2, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestFallbackClientPermanentErrorSkipsRetry(t *testing.T) {
	first := &stubClient{errs: []error{errors.New("401 unauthorized")}}

	f := &FallbackClient{Clients: []LLMClient{first}, MaxRetries: 3}
	_, err := f.StreamChat(context.Background(), nil, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "401")
	assert.Equal(t, 1, first.calls)
	assert.False(t, f.IsTransientError(err))
}

func TestIsTransientMessage(t *testing.T) {
	assert.True(t, IsTransientMessage(errors.New("googleapi: Error 503: model overloaded")))
	assert.True(t, IsTransientMessage(errors.New("429 Resource exhausted")))
	assert.False(t, IsTransientMessage(errors.New("400 invalid argument")))
	assert.False(t, IsTransientMessage(nil))
}

type stubFactory struct{ clients int }

func (f stubFactory) Create(cfg ProviderGroupConfig, sys *config.SystemConfig) ([]LLMClient, error) {
	var out []LLMClient
	for i := 0; i < f.clients*len(cfg.Models); i++ {
		out = append(out, &stubClient{})
	}
	return out, nil
}

func TestNewFromConfig(t *testing.T) {
	RegisterProvider("stub-one", stubFactory{clients: 1})
	sys := config.DefaultSystemConfig()

	client, err := NewFromConfig([]byte(`[{"type":"stub-one","models":["m1"]}]`), sys)
	require.NoError(t, err)
	assert.IsType(t, &stubClient{}, client)

	client, err = NewFromConfig([]byte(`[{"type":"stub-one","models":["m1","m2"]},{"type":"nope","models":["x"]}]`), sys)
	require.NoError(t, err)
	fb, ok := client.(*FallbackClient)
	require.True(t, ok)
	assert.Len(t, fb.Clients, 2)
	assert.Equal(t, sys.MaxRetries, fb.MaxRetries)

	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_AI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	_, err = NewFromConfig(nil, sys)
	assert.ErrorContains(t, err, "missing 'llm' config")

	_, err = NewFromConfig([]byte(`[{"type":"nope","models":["x"]}]`), sys)
	assert.Error(t, err)

	assert.Contains(t, RegisteredProviders(), "stub-one")
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "beef")
	assert.Equal(t, "beef", RequestIDFrom(ctx))
	assert.Equal(t, "beef", ctx.Value(DebugDirContextKey))
	assert.Empty(t, RequestIDFrom(context.Background()))
}

func TestGroupsFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_AI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "o-key")

	groups := groupsFromEnv()
	require.Len(t, groups, 1)
	assert.Equal(t, "gemini", groups[0].Type)
	assert.Equal(t, []string{DefaultGeminiModel}, groups[0].Models)
	require.NotNil(t, groups[0].Temperature)
	assert.InDelta(t, DefaultTemperature, *groups[0].Temperature, 1e-9)
}
