package llm

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// StreamDebugger dumps raw provider packets of one reasoning step to
// debug/chunks/<request id>/<provider>.log. A disabled debugger is a no-op.
type StreamDebugger struct {
	file *os.File
}

// NewStreamDebugger opens the dump file when enabled is true.
func NewStreamDebugger(ctx context.Context, provider string, enabled bool) *StreamDebugger {
	if !enabled {
		return &StreamDebugger{}
	}

	dir := filepath.Join("debug", "chunks")
	if id, _ := ctx.Value(DebugDirContextKey).(string); id != "" {
		dir = filepath.Join(dir, id)
	} else {
		dir = filepath.Join(dir, time.Now().Format("20060102_150405"))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.ErrorContext(ctx, "Failed to create debug directory", "dir", dir, "error", err)
		return &StreamDebugger{}
	}

	name := filepath.Join(dir, provider+".log")
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to open debug file", "file", name, "error", err)
		return &StreamDebugger{}
	}

	slog.DebugContext(ctx, "Chunk dump enabled", "provider", provider, "file", name)
	return &StreamDebugger{file: f}
}

// Enabled reports whether packets are being written.
func (d *StreamDebugger) Enabled() bool {
	return d.file != nil
}

// WriteJSON appends v as one JSON line.
func (d *StreamDebugger) WriteJSON(v any) {
	if d.file == nil || v == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("Failed to encode debug packet", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := d.file.Write(data); err != nil {
		slog.Warn("Failed to write to debug file", "error", err)
	}
}

// Close closes the dump file.
func (d *StreamDebugger) Close() {
	if d.file != nil {
		d.file.Close()
		d.file = nil
	}
}
