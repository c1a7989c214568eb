package gateway

import (
	"fmt"

	"scriptura/pkg/api"
	"scriptura/pkg/monitor"
)

// GatewayBuilder assembles a GatewayManager from pre-built parts and starts it.
type GatewayBuilder struct {
	gw             *GatewayManager
	monitor        monitor.Monitor
	handlerBuilder func(api.MessageResponder) api.MessageProcessor
	channels       []api.Channel
}

// NewGatewayBuilder creates a builder around a fresh GatewayManager.
func NewGatewayBuilder() *GatewayBuilder {
	return &GatewayBuilder{
		gw: NewGatewayManager(),
	}
}

// WithMonitor injects a monitor, started during Build.
func (b *GatewayBuilder) WithMonitor(m monitor.Monitor) *GatewayBuilder {
	b.monitor = m
	return b
}

// WithChannel adds pre-built channel instances to the gateway.
func (b *GatewayBuilder) WithChannel(channels ...api.Channel) *GatewayBuilder {
	b.channels = append(b.channels, channels...)
	return b
}

// WithHandler injects the message handler. If it implements
// api.ResponderAware it receives the gateway as its responder.
func (b *GatewayBuilder) WithHandler(h api.MessageProcessor) *GatewayBuilder {
	b.handlerBuilder = func(responder api.MessageResponder) api.MessageProcessor {
		if setter, ok := h.(api.ResponderAware); ok {
			setter.SetResponder(responder)
		}
		return h
	}
	return b
}

// Build wires everything and starts the monitor and the channels.
func (b *GatewayBuilder) Build() (*GatewayManager, error) {
	if b.monitor != nil {
		b.gw.SetMonitor(b.monitor)
		if err := b.monitor.Start(); err != nil {
			return nil, fmt.Errorf("failed to start monitor: %w", err)
		}
	}

	for _, c := range b.channels {
		b.gw.Register(c)
	}

	if b.handlerBuilder != nil {
		if handler := b.handlerBuilder(b.gw); handler != nil {
			b.gw.SetMessageHandler(handler.OnMessage)
		}
	}

	if err := b.gw.StartAll(); err != nil {
		return nil, fmt.Errorf("failed to start channels: %w", err)
	}

	return b.gw, nil
}
