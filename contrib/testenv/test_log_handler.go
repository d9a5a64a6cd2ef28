package testenv

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// TestLogHandler is a slog.Handler that prints a running index, the level
// and the message without a timestamp, so example output is stable.
type TestLogHandler struct {
	out   io.Writer
	mu    *sync.Mutex
	index *int
	attrs []slog.Attr
	group string

	ignorePrefixes []string
	ignoreDebug    bool
}

// TestLogHandlerOption configures a TestLogHandler.
type TestLogHandlerOption func(*TestLogHandler)

// WithOutput sends lines to w instead of stdout.
func WithOutput(w io.Writer) TestLogHandlerOption {
	return func(h *TestLogHandler) {
		h.out = w
	}
}

// WithIgnorePrefixes drops warnings and errors whose message starts with
// one of prefixes, such as the warning logged for an expected 404.
func WithIgnorePrefixes(prefixes ...string) TestLogHandlerOption {
	return func(h *TestLogHandler) {
		h.ignorePrefixes = append(h.ignorePrefixes, prefixes...)
	}
}

// WithIgnoreDebug drops DEBUG records.
func WithIgnoreDebug() TestLogHandlerOption {
	return func(h *TestLogHandler) {
		h.ignoreDebug = true
	}
}

func NewTestLogHandler() *TestLogHandler {
	return NewTestLogHandlerWithOptions()
}

func NewTestLogHandlerWithOptions(opts ...TestLogHandlerOption) *TestLogHandler {
	h := &TestLogHandler{out: os.Stdout, mu: &sync.Mutex{}, index: new(int)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TestLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level != slog.LevelDebug || !h.ignoreDebug
}

//nolint:gocritic
func (h *TestLogHandler) Handle(_ context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		for _, prefix := range h.ignorePrefixes {
			if strings.HasPrefix(r.Message, prefix) {
				return nil
			}
		}
	}

	parts := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		parts = append(parts, formatAttr(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		parts = append(parts, formatAttr(a))
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	line := fmt.Sprintf("[%d] %s: %s", *h.index, r.Level, r.Message)
	if len(parts) > 0 {
		line += " " + strings.Join(parts, ", ")
	}
	*h.index++
	_, err := fmt.Fprintln(h.out, line)
	return err
}

func formatAttr(a slog.Attr) string {
	if a.Value.Kind() != slog.KindGroup {
		return fmt.Sprintf("%s=%v", a.Key, a.Value)
	}
	parts := make([]string, 0, len(a.Value.Group()))
	for _, ga := range a.Value.Group() {
		ga.Key = a.Key + "." + ga.Key
		parts = append(parts, formatAttr(ga))
	}
	return strings.Join(parts, ", ")
}

func (h *TestLogHandler) clone() *TestLogHandler {
	c := *h
	c.attrs = h.attrs[:len(h.attrs):len(h.attrs)]
	return &c
}

func (h *TestLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		c.attrs = append(c.attrs, a)
	}
	return c
}

func (h *TestLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	if c.group != "" {
		c.group += "." + name
	} else {
		c.group = name
	}
	return c
}
