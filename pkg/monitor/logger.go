package monitor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"scriptura/pkg/llm"

	"github.com/fatih/color"
)

// CustomHandler implements slog.Handler with a
// [TIME] [LEVEL] [REQUEST_ID] message k=v format.
type CustomHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	opts  slog.HandlerOptions
	attrs []slog.Attr
	group string
}

func NewCustomHandler(w io.Writer, opts slog.HandlerOptions) *CustomHandler {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	return &CustomHandler{
		mu:   &sync.Mutex{},
		w:    w,
		opts: opts,
	}
}

func (h *CustomHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *CustomHandler) Handle(ctx context.Context, r slog.Record) error {
	buf := bytes.NewBuffer(nil)

	fmt.Fprintf(buf, "[%s] [%s]",
		r.Time.Format("2006-01-02 15:04:05"),
		r.Level,
	)

	if id := llm.RequestIDFrom(ctx); id != "" {
		fmt.Fprintf(buf, " [%s]", id)
	}

	fmt.Fprintf(buf, " %s", r.Message)

	for _, a := range h.attrs {
		h.appendAttr(buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(buf, h.group, a)
		return true
	})

	buf.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *CustomHandler) appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	val := a.Value.Resolve()
	if val.Kind() == slog.KindGroup {
		for _, ga := range val.Group() {
			h.appendAttr(buf, key, ga)
		}
		return
	}

	buf.WriteString(" ")
	buf.WriteString(key)
	buf.WriteString("=")

	switch val.Kind() {
	case slog.KindString:
		fmt.Fprintf(buf, "%q", val.String())
	case slog.KindTime:
		buf.WriteString(val.Time().Format(time.RFC3339))
	default:
		fmt.Fprintf(buf, "%v", val.Any())
	}
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefixed := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	prefixed = append(prefixed, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		prefixed = append(prefixed, a)
	}
	return &CustomHandler{mu: h.mu, w: h.w, opts: h.opts, attrs: prefixed, group: h.group}
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &CustomHandler{mu: h.mu, w: h.w, opts: h.opts, attrs: h.attrs, group: group}
}

// ParseLevel maps a config level string to a slog level; unknown values mean info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var levelVar = new(slog.LevelVar)

// SetupSlog installs the CustomHandler as the global logger on stderr.
func SetupSlog(levelStr string) {
	levelVar.Set(ParseLevel(levelStr))
	slog.SetDefault(slog.New(NewCustomHandler(os.Stderr, slog.HandlerOptions{Level: levelVar})))
}

// SetLevel changes the global level at runtime (system.json hot reload).
func SetLevel(levelStr string) {
	levelVar.Set(ParseLevel(levelStr))
}

// PrintBanner prints the startup banner
func PrintBanner(version string) {
	title := color.New(color.FgHiYellow, color.Bold)
	sub := color.New(color.FgHiBlack)

	title.Println(`
  ___  ___ ___ ___ ___ _____ _   _ ___    _
 / __|/ __| _ \_ _| _ \_   _| | | | _ \  /_\
 \__ \ (__|   /| ||  _/ | | | |_| |   / / _ \
 |___/\___|_|_\___|_|   |_|  \___/|_|_\/_/ \_\`)
	sub.Printf("  scripture-grounded question answering  %s\n\n", version)
}
