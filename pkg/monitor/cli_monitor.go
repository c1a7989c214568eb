package monitor

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// CLIMonitor prints every question and answer flowing through the gateway
// to the terminal.
type CLIMonitor struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewCLIMonitor creates a new CLI monitor writing to stdout.
func NewCLIMonitor() *CLIMonitor {
	return NewCLIMonitorTo(os.Stdout)
}

// NewCLIMonitorTo creates a CLI monitor writing to w.
func NewCLIMonitorTo(w io.Writer) *CLIMonitor {
	return &CLIMonitor{writer: w}
}

func (m *CLIMonitor) Start() error {
	fmt.Fprintln(m.writer, "----------------------------------------------------------------")
	fmt.Fprintln(m.writer, "CLI Monitor active: questions and answers from all channels appear here")
	fmt.Fprintln(m.writer, "----------------------------------------------------------------")
	return nil
}

func (m *CLIMonitor) Stop() error {
	return nil
}

func (m *CLIMonitor) OnMessage(msg MonitorMessage) {
	timestamp := color.HiBlackString("[%s]", msg.Timestamp.Format("2006-01-02 15:04:05"))

	var line string
	if msg.MessageType == MessageTypeAssistant {
		tag := "[AI]"
		if msg.Route != "" {
			tag = fmt.Sprintf("[AI/%s]", msg.Route)
		}
		line = fmt.Sprintf("%s %s", color.CyanString(tag), msg.Content)
	} else {
		line = fmt.Sprintf("%s %s", color.GreenString("[%s/%s]", msg.ChannelID, msg.Username), msg.Content)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.writer, "%s %s\n", timestamp, line)
}
