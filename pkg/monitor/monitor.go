package monitor

import "time"

// Message types shown by a Monitor.
const (
	MessageTypeUser      = "USER"
	MessageTypeAssistant = "ASSISTANT"
)

// MonitorMessage is one question or answer passing through a channel.
type MonitorMessage struct {
	Timestamp   time.Time
	MessageType string // MessageTypeUser or MessageTypeAssistant
	ChannelID   string
	Username    string
	Content     string
	// Route is "fast_path" or "agent" for answers, empty for questions.
	Route string
}

// Monitor observes traffic on all channels.
type Monitor interface {
	Start() error
	Stop() error
	OnMessage(msg MonitorMessage)
}
