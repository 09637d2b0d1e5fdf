package slogutil

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ssiserve/internal/config"
)

func TestHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.Info("Rendered document", "path", "/index.html", "includes", 3)

	output := buf.String()
	for _, part := range []string{"[info]", "Rendered document", " | ", "path=/index.html", "includes=3"} {
		if !strings.Contains(output, part) {
			t.Errorf("expected %q in output, got: %s", part, output)
		}
	}
	if !strings.HasSuffix(output, "\n") {
		t.Errorf("expected trailing newline, got: %q", output)
	}
}

func TestHandler_Levels(t *testing.T) {
	tests := []struct {
		logFunc  func(*slog.Logger)
		expected string
	}{
		{func(l *slog.Logger) { l.Debug("debug") }, "[debug]"},
		{func(l *slog.Logger) { l.Info("info") }, "[info]"},
		{func(l *slog.Logger) { l.Warn("warn") }, "[warn]"},
		{func(l *slog.Logger) { l.Error("error") }, "[error]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, slog.LevelDebug)
			tt.logFunc(logger)

			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("expected %s in output, got: %s", tt.expected, buf.String())
			}
		})
	}
}

func TestHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Error("debug message should be filtered")
	}
	if strings.Contains(output, "info message") {
		t.Error("info message should be filtered")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("warn message should be included")
	}
	if !strings.Contains(output, "error message") {
		t.Error("error message should be included")
	}
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo).With("requestID", "abc").WithGroup("include")

	logger.Info("Include resolved", "target", "nav.html")

	output := buf.String()
	if !strings.Contains(output, "requestID=abc") {
		t.Errorf("expected requestID=abc, got: %s", output)
	}
	if !strings.Contains(output, "include.target=nav.html") {
		t.Errorf("expected grouped key include.target, got: %s", output)
	}
}

func TestHandler_ValueFormatting(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want string
	}{
		{"plain string", []any{"path", "/docs/index.html"}, " | path=/docs/index.html\n"},
		{"string with space", []any{"path", "/my docs/a.html"}, ` | path="/my docs/a.html"` + "\n"},
		{"empty string", []any{"target", ""}, ` | target=""` + "\n"},
		{"error value", []any{"error", errors.New("open x: no such file")}, ` | error="open x: no such file"` + "\n"},
		{"inline group", []any{slog.Group("req", "method", "GET", "status", 200)}, " | req.method=GET req.status=200\n"},
		{"empty group dropped", []any{slog.Group("none"), "n", 1}, " | n=1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewLogger(&buf, slog.LevelInfo).Info("msg", tt.args...)
			if got := buf.String(); !strings.HasSuffix(got, "] msg"+tt.want) {
				t.Errorf("output = %q, want suffix %q", got, "] msg"+tt.want)
			}
		})
	}
}

func TestHandler_BoundAttrsNotShared(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&buf, slog.LevelInfo).With("requestID", "r1")
	a := base.With("doc", "a.html")
	b := base.With("doc", "b.html")

	a.Info("one")
	b.Info("two")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], "| requestID=r1 doc=a.html") {
		t.Errorf("line 1 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "| requestID=r1 doc=b.html") {
		t.Errorf("line 2 = %q", lines[1])
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := LevelFromString(tt.input); got != tt.expected {
				t.Errorf("LevelFromString(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")
}

func TestTeeHandler(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h1 := NewHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo})
	h2 := NewHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelWarn})

	logger := slog.New(NewTeeHandler(h1, h2))
	logger.Info("info message")
	logger.Warn("warn message")

	if !strings.Contains(buf1.String(), "info message") {
		t.Error("buf1 should contain info message")
	}
	if !strings.Contains(buf1.String(), "warn message") {
		t.Error("buf1 should contain warn message")
	}
	if strings.Contains(buf2.String(), "info message") {
		t.Error("buf2 should not contain info message")
	}
	if !strings.Contains(buf2.String(), "warn message") {
		t.Error("buf2 should contain warn message")
	}
}

func TestFromConfig_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	logger, closer, err := FromConfig(config.LoggingConfig{Level: "warn"}, &console)
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(console.String(), "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(console.String(), "shown") {
		t.Error("warn should reach the console")
	}
}

func TestFromConfig_WithFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	logger, closer, err := FromConfig(config.LoggingConfig{Level: "info", File: path, MaxSize: "1MB", MaxBackups: 2}, &console)
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	logger.Info("Serving", "port", 8000)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "port=8000") {
		t.Errorf("log file = %q, want port=8000", data)
	}
	if !strings.Contains(console.String(), "port=8000") {
		t.Errorf("console = %q, want port=8000", console.String())
	}
}
