package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"scriptura/pkg/api"
	"scriptura/pkg/channels"
	"scriptura/pkg/router"
	"scriptura/pkg/store"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnswerer struct {
	answer string
	err    error
}

func (f *fakeAnswerer) Route(ctx context.Context, prompt string) (string, error) {
	return f.answer, f.err
}

func (f *fakeAnswerer) Classify(prompt string) string { return "fast_path" }

func newTestChannel(t *testing.T, a api.Answerer) *WebChannel {
	t.Helper()
	s := store.New(store.NewMemoryDriver(store.SampleFixture()))
	t.Cleanup(func() { _ = s.Close() })
	return NewWebChannel(WebConfig{Port: 8080}, s, a)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestChannel(t, nil).Handler(nil)
	rec := do(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"Health":"OK"}`, rec.Body.String())
}

func TestBibleVerse(t *testing.T) {
	h := newTestChannel(t, nil).Handler(nil)
	rec := do(t, h, http.MethodGet, "/bible/bsb/John/3/16", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got passageJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "BSB", got.Translation)
	assert.Equal(t, "John", got.Book)
	require.Len(t, got.Chapter["3"], 1)
	assert.Equal(t, 16, got.Chapter["3"][0].Number)
}

func TestBibleChapterOrdered(t *testing.T) {
	h := newTestChannel(t, nil).Handler(nil)
	rec := do(t, h, http.MethodGet, "/bible/KJV/Psalms/117", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got passageJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	verses := got.Chapter["117"]
	require.Len(t, verses, 2)
	assert.Equal(t, 1, verses[0].Number)
	assert.Equal(t, 2, verses[1].Number)
}

func TestBibleMisses(t *testing.T) {
	h := newTestChannel(t, nil).Handler(nil)
	tests := []struct {
		path   string
		detail string
	}{
		{"/bible/XYZ", "Translation not found"},
		{"/bible/BSB/Hezekiah", "Book not found"},
		{"/bible/XYZ/John/3/16", "Translation 'XYZ' is not available"},
		{"/bible/BSB/John/3/99", "Verse not found."},
		{"/bible/BSB/John/21", "Chapter not found."},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path, "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.detail)
		})
	}
}

func TestBibleTranslationAndBook(t *testing.T) {
	h := newTestChannel(t, nil).Handler(nil)

	rec := do(t, h, http.MethodGet, "/bible/kjv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"shortname":"KJV"`)

	rec = do(t, h, http.MethodGet, "/bible/BSB/Genesis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Genesis"`)
}

func TestAsk(t *testing.T) {
	h := newTestChannel(t, &fakeAnswerer{answer: "John 3:16 (BSB)\nFor God so loved"}).Handler(nil)
	rec := do(t, h, http.MethodPost, "/ask", `{"prompt":"John 3:16"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "John 3:16 (BSB)\nFor God so loved", got.Answer)
	assert.Equal(t, "fast_path", got.Route)
}

func TestAskErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"bad body", `not json`, nil, http.StatusBadRequest},
		{"empty prompt", `{"prompt":"  "}`, nil, http.StatusBadRequest},
		{"not found", `{"prompt":"John 99:1"}`, router.ErrChapterNotFound, http.StatusNotFound},
		{"agent", `{"prompt":"why?"}`, router.ErrAgent, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestChannel(t, &fakeAnswerer{err: tt.err}).Handler(nil)
			rec := do(t, h, http.MethodPost, "/ask", tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestAskWithoutAnswerer(t *testing.T) {
	h := newTestChannel(t, nil).Handler(nil)
	rec := do(t, h, http.MethodPost, "/ask", `{"prompt":"q"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type echoContext struct {
	c *WebChannel
}

func (e *echoContext) SendReply(session api.SessionContext, content string) error {
	return e.c.Send(session, content)
}

func (e *echoContext) SendSignal(session api.SessionContext, signal string) error {
	return e.c.SendSignal(session, signal)
}

func (e *echoContext) OnMessage(channelID string, msg *api.UnifiedMessage) {
	_ = e.SendSignal(msg.Session, "thinking")
	_ = e.SendReply(msg.Session, "echo: "+msg.Content)
}

func TestWebSocketRoundTrip(t *testing.T) {
	c := newTestChannel(t, nil)
	srv := httptest.NewServer(c.Handler(&echoContext{c: c}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"text":"John 3:16"}`)))
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var signal, reply OutgoingMessage
	require.NoError(t, conn.ReadJSON(&signal))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, OutgoingMessage{Type: "signal", Value: "thinking"}, signal)
	assert.Equal(t, OutgoingMessage{Type: "answer", Text: "echo: John 3:16"}, reply)
}

func TestFactory(t *testing.T) {
	f := &WebFactory{}

	ch, err := f.Create(nil, channels.Deps{})
	require.NoError(t, err)
	assert.Equal(t, 8080, ch.(*WebChannel).config.Port)

	ch, err = f.Create([]byte(`{"port":9000}`), channels.Deps{})
	require.NoError(t, err)
	assert.Equal(t, 9000, ch.(*WebChannel).config.Port)

	_, err = f.Create([]byte(`{"port":-1}`), channels.Deps{})
	assert.Error(t, err)
}

func TestSendToUnknownSession(t *testing.T) {
	c := newTestChannel(t, nil)
	assert.Error(t, c.Send(api.SessionContext{UserID: "ghost"}, "hi"))
}
