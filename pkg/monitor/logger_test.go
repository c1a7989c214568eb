package monitor

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"scriptura/pkg/llm"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestCustomHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCustomHandler(&buf, slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := llm.WithRequestID(context.Background(), "a1b2")
	logger.With("component", "router").InfoContext(ctx, "Fast path hit", "book", "John", "chapter", 3)

	line := buf.String()
	assert.Contains(t, line, "[INFO] [a1b2] Fast path hit")
	assert.Contains(t, line, `component="router"`)
	assert.Contains(t, line, `book="John"`)
	assert.Contains(t, line, "chapter=3")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestCustomHandlerGroupsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCustomHandler(&buf, slog.HandlerOptions{Level: slog.LevelWarn}))

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.WithGroup("tool").Warn("slow", "name", "scripture_lookup")
	assert.Contains(t, buf.String(), `tool.name="scripture_lookup"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestCLIMonitorOnMessage(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	m := NewCLIMonitorTo(&buf)

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.OnMessage(MonitorMessage{Timestamp: ts, MessageType: MessageTypeUser, ChannelID: "web", Username: "anna", Content: "John 3:16"})
	m.OnMessage(MonitorMessage{Timestamp: ts, MessageType: MessageTypeAssistant, Route: "fast_path", Content: "John 3:16 (BSB)"})

	out := buf.String()
	assert.Contains(t, out, "[2026-01-02 03:04:05] [web/anna] John 3:16")
	assert.Contains(t, out, "[AI/fast_path] John 3:16 (BSB)")
}
