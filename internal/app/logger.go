package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/andyballingall/rustfmt-quote/internal/fs"
)

// LogEnvVar names a file which receives every log record as JSON.
const LogEnvVar = "RUSTFMT_QUOTE_LOG_FILE"

// setupLogger configures a logger that writes clean, human-readable logs to
// the console and, when LogEnvVar is set, structured logs to a file.
// If the file cannot be opened the console logger is still returned, along
// with the error.
func setupLogger(stderr io.Writer, logLevel *slog.LevelVar, env fs.EnvProvider) (*slog.Logger, io.Closer, error) {
	console := newConsoleHandler(stderr, logLevel)

	logPath := ""
	if env != nil {
		logPath = env.Get(LogEnvVar)
	}
	if logPath == "" {
		return slog.New(console), nil, nil
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return slog.New(console), nil, err
	}

	fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: slog.LevelDebug, // File always gets full debug info
	})

	multi := &multiHandler{
		handlers: []slog.Handler{fileHandler, console},
	}
	return slog.New(multi), f, nil
}

type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

//nolint:gocritic // slog.Record is passed by value in the interface
func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, record.Level) {
			if err := h.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

// consoleHandler prints one line per record. The location of a problem
// (path and line attributes) and any error are always shown. A formatter
// input attribute follows on its own lines. Everything else is only shown at
// debug level.
type consoleHandler struct {
	mu    *sync.Mutex // shared by every handler derived from the same writer
	w     io.Writer
	level *slog.LevelVar
	attrs []slog.Attr
}

func newConsoleHandler(w io.Writer, level *slog.LevelVar) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level}
}

func (c *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= c.level.Level()
}

//nolint:gocritic // slog.Record is passed by value in the interface
func (c *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	attrs := append([]slog.Attr(nil), c.attrs...)
	record.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	var sb strings.Builder
	switch {
	case record.Level >= slog.LevelError:
		fmt.Fprintf(&sb, "Error: %s", record.Message)
	case record.Level >= slog.LevelWarn:
		fmt.Fprintf(&sb, "Warning: %s", record.Message)
	default:
		sb.WriteString(record.Message)
	}

	debug := c.level.Level() <= slog.LevelDebug
	var path, line, input string
	var rest []string
	for _, a := range attrs {
		switch a.Key {
		case "path":
			path = a.Value.String()
		case "line":
			line = a.Value.String()
		case "input":
			input = a.Value.String()
		case "error", "err":
			rest = append(rest, ": "+a.Value.String())
		default:
			if debug {
				rest = append(rest, fmt.Sprintf(" %s=%v", a.Key, a.Value))
			}
		}
	}

	if path != "" {
		sb.WriteString(" (" + path)
		if line != "" {
			sb.WriteString(":" + line)
		}
		sb.WriteString(")")
	}
	for _, r := range rest {
		sb.WriteString(r)
	}
	sb.WriteString("\n")
	if input != "" {
		for _, l := range strings.Split(strings.TrimRight(input, "\n"), "\n") {
			sb.WriteString("    | " + l + "\n")
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.w, sb.String())
	return err
}

func (c *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &consoleHandler{
		mu:    c.mu,
		w:     c.w,
		level: c.level,
		attrs: append(append([]slog.Attr(nil), c.attrs...), attrs...),
	}
}

func (c *consoleHandler) WithGroup(_ string) slog.Handler {
	// Grouping not deeply supported in this simple console output for now
	return c
}
