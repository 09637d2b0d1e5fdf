// Package slogutil provides the slog handler and helpers used by ssiserve.
package slogutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Handler writes one line per record:
//
//	2024-05-01T12:00:00Z [info] HTTP request | method=GET path=/index.html status=200
//
// Attributes bound with WithAttrs are rendered once, so per-request
// loggers carrying a request ID cost nothing extra per line.
type Handler struct {
	w     io.Writer
	mu    *sync.Mutex
	level slog.Leveler

	// prefix is the dotted group path applied to new keys, e.g. "include.".
	prefix string
	// bound holds pre-rendered " key=value" pairs from WithAttrs.
	bound []byte
}

// NewHandler creates a line handler writing to w.
func NewHandler(w io.Writer, opts *slog.HandlerOptions) *Handler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &Handler{w: w, mu: &sync.Mutex{}, level: level}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	line := make([]byte, 0, 128+len(h.bound))
	line = r.Time.UTC().AppendFormat(line, time.RFC3339)
	line = append(line, " ["...)
	line = append(line, levelString(r.Level)...)
	line = append(line, "] "...)
	line = append(line, r.Message...)

	pairs := h.bound
	if r.NumAttrs() > 0 {
		pairs = append([]byte(nil), h.bound...)
		r.Attrs(func(a slog.Attr) bool {
			pairs = appendAttr(pairs, h.prefix, a)
			return true
		})
	}
	if len(pairs) > 0 {
		line = append(line, " |"...)
		line = append(line, pairs...)
	}
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(line)
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.bound = append([]byte(nil), h.bound...)
	for _, a := range attrs {
		h2.bound = appendAttr(h2.bound, h.prefix, a)
	}
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}

// appendAttr renders a as " key=value". Group values are flattened into
// dotted keys; empty attributes and empty groups are dropped.
func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = appendAttr(buf, prefix, ga)
		}
		return buf
	}
	if a.Key == "" {
		return buf
	}
	buf = append(buf, ' ')
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	return append(buf, formatValue(a.Value)...)
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "debug"
	case level < slog.LevelWarn:
		return "info"
	case level < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}

// formatValue renders v, quoting strings that would break key=value parsing.
func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindBool:
		return v.String()
	default:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=|") {
		return strconv.Quote(s)
	}
	return s
}
