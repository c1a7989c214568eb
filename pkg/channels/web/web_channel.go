package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"scriptura/pkg/api"
	"scriptura/pkg/store"
	"scriptura/pkg/utils"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for decoupled UI
	},
}

type WebConfig struct {
	Port int `json:"port"` // Default: 8080
}

// IncomingMessage is what a websocket client sends. Plain text frames are accepted too.
type IncomingMessage struct {
	Text string `json:"text"`
}

// OutgoingMessage is every frame the server writes to a websocket client.
type OutgoingMessage struct {
	Type  string `json:"type"` // "answer" or "signal"
	Text  string `json:"text,omitempty"`
	Value string `json:"value,omitempty"`
}

type SafeConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (sc *SafeConn) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.Conn.WriteMessage(websocket.TextMessage, data)
}

// WebChannel serves the REST lookups, POST /ask and the /ws chat.
type WebChannel struct {
	config      WebConfig
	server      *http.Server
	store       *store.Store
	answerer    api.Answerer
	connections map[string]*SafeConn // connection id -> WS connection
	mu          sync.RWMutex
}

func NewWebChannel(cfg WebConfig, s *store.Store, answerer api.Answerer) *WebChannel {
	return &WebChannel{
		config:      cfg,
		store:       s,
		answerer:    answerer,
		connections: make(map[string]*SafeConn),
	}
}

func (c *WebChannel) ID() string {
	return "web"
}

// Handler builds the HTTP routes. ctx receives websocket questions; it may
// be nil when only the REST surface is needed.
func (c *WebChannel) Handler(ctx api.ChannelContext) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", c.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ask", c.handleAsk).Methods(http.MethodPost)
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		c.handleWebSocket(w, req, ctx)
	})

	b := r.PathPrefix("/bible").Subrouter()
	b.HandleFunc("/{translation}", c.handleTranslation).Methods(http.MethodGet)
	b.HandleFunc("/{translation}/{book}", c.handleBook).Methods(http.MethodGet)
	b.HandleFunc("/{translation}/{book}/{chapter:[0-9]+}", c.handlePassage).Methods(http.MethodGet)
	b.HandleFunc("/{translation}/{book}/{chapter:[0-9]+}/{verse:[0-9]+}", c.handlePassage).Methods(http.MethodGet)
	return r
}

func (c *WebChannel) Start(ctx api.ChannelContext) error {
	c.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", c.config.Port),
		Handler:           c.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Web API listening", "port", c.config.Port)

	go func() {
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Web API server error", "error", err)
		}
	}()

	return nil
}

func (c *WebChannel) Stop() error {
	if c.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.server.Shutdown(ctx)
}

func (c *WebChannel) conn(session api.SessionContext) (*SafeConn, error) {
	c.mu.RLock()
	conn, ok := c.connections[session.UserID]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("web user %s not connected", session.UserID)
	}
	return conn, nil
}

func (c *WebChannel) Send(session api.SessionContext, message string) error {
	conn, err := c.conn(session)
	if err != nil {
		return err
	}
	return conn.WriteJSON(OutgoingMessage{Type: "answer", Text: message})
}

// SendSignal implements the gateway.SignalingChannel interface
func (c *WebChannel) SendSignal(session api.SessionContext, signal string) error {
	conn, err := c.conn(session)
	if err != nil {
		return err
	}
	return conn.WriteJSON(OutgoingMessage{Type: "signal", Value: signal})
}

func (c *WebChannel) handleWebSocket(w http.ResponseWriter, r *http.Request, ctx api.ChannelContext) {
	if ctx == nil {
		http.Error(w, "chat is not enabled", http.StatusServiceUnavailable)
		return
	}

	rawConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WS Upgrade failed", "error", err)
		return
	}
	conn := &SafeConn{Conn: rawConn}
	connID := utils.GenerateID()

	c.mu.Lock()
	c.connections[connID] = conn
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.connections, connID)
		c.mu.Unlock()
		conn.Close()
	}()

	session := api.SessionContext{
		ChannelID: c.ID(),
		UserID:    connID,
		ChatID:    connID,
		Username:  "WebUser",
	}

	for {
		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			break
		}

		content := string(msgBytes)
		var incoming IncomingMessage
		if err := json.Unmarshal(msgBytes, &incoming); err == nil && incoming.Text != "" {
			content = incoming.Text
		}
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}

		ctx.OnMessage(c.ID(), &api.UnifiedMessage{
			Session: session,
			Content: content,
		})
	}
}
