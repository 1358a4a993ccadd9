package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders one line per record for terminals:
//
//	2024-05-01T10:00:00Z INFO scanner: scan complete file_count=3
//
// The component attribute becomes the message prefix. Remaining attributes
// are rendered by an slog.TextHandler that writes into a shared buffer.
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	buf       *bytes.Buffer
	text      slog.Handler
	level     slog.Leveler
	addSource bool
	component string
	grouped   bool
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	buf := &bytes.Buffer{}
	return &consoleHandler{
		mu:        &sync.Mutex{},
		out:       w,
		buf:       buf,
		text:      slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level, ReplaceAttr: dropConsoleHeader}),
		level:     level,
		addSource: addSource,
	}
}

// dropConsoleHeader removes the attributes the console line renders itself.
func dropConsoleHeader(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return attr
	}
	switch attr.Key {
	case slog.TimeKey, slog.LevelKey, slog.MessageKey, FieldComponent:
		return slog.Attr{}
	}
	return attr
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(ctx context.Context, record slog.Record) error {
	component := h.component
	if component == "" && !h.grouped {
		record.Attrs(func(attr slog.Attr) bool {
			if attr.Key == FieldComponent {
				component = attr.Value.String()
				return false
			}
			return true
		})
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var line strings.Builder
	line.WriteString(ts.UTC().Format(time.RFC3339))
	line.WriteByte(' ')
	line.WriteString(levelLabel(record.Level))
	line.WriteByte(' ')
	if component != "" {
		line.WriteString(component)
		line.WriteString(": ")
	}
	if msg := strings.TrimSpace(record.Message); msg != "" {
		line.WriteString(msg)
	} else {
		line.WriteString("(no message)")
	}
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			line.WriteString(" [" + filepath.Base(src.File) + ":" + strconv.Itoa(src.Line) + "]")
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf.Reset()
	if err := h.text.Handle(ctx, record); err != nil {
		return err
	}
	if attrs := strings.TrimSpace(h.buf.String()); attrs != "" {
		line.WriteByte(' ')
		line.WriteString(attrs)
	}
	line.WriteByte('\n')
	_, err := io.WriteString(h.out, line.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	if next.component == "" && !next.grouped {
		for _, attr := range attrs {
			if attr.Key == FieldComponent {
				next.component = attr.Value.String()
				break
			}
		}
	}
	next.text = h.text.WithAttrs(attrs)
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.grouped = true
	next.text = h.text.WithGroup(name)
	return &next
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
