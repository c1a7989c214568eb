package gateway

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"scriptura/pkg/monitor"
)

// GatewayManager owns every registered Channel and funnels their questions
// into a single message handler.
type GatewayManager struct {
	channels   map[string]Channel
	msgHandler MessageHandler
	monitor    monitor.Monitor
	mu         sync.RWMutex
}

// NewGatewayManager creates an empty manager.
func NewGatewayManager() *GatewayManager {
	return &GatewayManager{
		channels: make(map[string]Channel),
	}
}

// SetMessageHandler sets the function every inbound message is passed to.
func (g *GatewayManager) SetMessageHandler(handler MessageHandler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.msgHandler = handler
}

// SetMonitor sets the traffic monitor.
func (g *GatewayManager) SetMonitor(m monitor.Monitor) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.monitor = m
}

// Register adds a channel, replacing any channel with the same ID.
func (g *GatewayManager) Register(c Channel) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.channels[c.ID()] = c
}

// GetChannel returns the channel registered under id.
func (g *GatewayManager) GetChannel(id string) (Channel, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.channels[id]
	return c, ok
}

// ChannelIDs lists the registered channel IDs, sorted.
func (g *GatewayManager) ChannelIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]string, 0, len(g.channels))
	for id := range g.channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StartAll starts every registered channel with the manager as its context.
func (g *GatewayManager) StartAll() error {
	for _, id := range g.ChannelIDs() {
		c, _ := g.GetChannel(id)
		slog.Info("Starting channel", "channel", id)
		if err := c.Start(g); err != nil {
			return fmt.Errorf("failed to start channel %s: %w", id, err)
		}
	}
	return nil
}

// StopAll stops every channel, logging failures.
func (g *GatewayManager) StopAll() {
	for _, id := range g.ChannelIDs() {
		c, _ := g.GetChannel(id)
		slog.Info("Stopping channel", "channel", id)
		if err := c.Stop(); err != nil {
			slog.Error("Error stopping channel", "channel", id, "error", err)
		}
	}

	g.mu.RLock()
	m := g.monitor
	g.mu.RUnlock()
	if m != nil {
		if err := m.Stop(); err != nil {
			slog.Error("Error stopping monitor", "error", err)
		}
	}
}

// SendReply implements api.MessageResponder.
func (g *GatewayManager) SendReply(session SessionContext, content string) error {
	return g.SendRoutedReply(session, content, "")
}

// SendRoutedReply implements api.RoutedResponder.
func (g *GatewayManager) SendRoutedReply(session SessionContext, content, route string) error {
	slog.Debug("Reply", "channel", session.ChannelID, "user", session.Username, "route", route, "len", len(content))

	g.observe(monitor.MonitorMessage{
		Timestamp:   time.Now(),
		MessageType: monitor.MessageTypeAssistant,
		ChannelID:   session.ChannelID,
		Username:    session.Username,
		Content:     content,
		Route:       route,
	})

	c, ok := g.GetChannel(session.ChannelID)
	if !ok {
		return fmt.Errorf("channel %s not found", session.ChannelID)
	}
	return c.Send(session, content)
}

// SendSignal forwards signal to channels that support signals and ignores it otherwise.
func (g *GatewayManager) SendSignal(session SessionContext, signal string) error {
	c, ok := g.GetChannel(session.ChannelID)
	if !ok {
		return fmt.Errorf("channel %s not found", session.ChannelID)
	}

	if sc, ok := c.(SignalingChannel); ok {
		return sc.SendSignal(session, signal)
	}
	return nil
}

// OnMessage implements api.ChannelContext.
func (g *GatewayManager) OnMessage(channelID string, msg *UnifiedMessage) {
	slog.Info("Received message", "channel", channelID, "user", msg.Session.Username, "user_id", msg.Session.UserID)

	g.observe(monitor.MonitorMessage{
		Timestamp:   time.Now(),
		MessageType: monitor.MessageTypeUser,
		ChannelID:   channelID,
		Username:    msg.Session.Username,
		Content:     msg.Content,
	})

	g.mu.RLock()
	handler := g.msgHandler
	g.mu.RUnlock()

	if handler == nil {
		slog.Warn("No message handler set", "channel", channelID)
		return
	}
	handler(msg)
}

func (g *GatewayManager) observe(m monitor.MonitorMessage) {
	g.mu.RLock()
	mon := g.monitor
	g.mu.RUnlock()
	if mon != nil {
		mon.OnMessage(m)
	}
}
