package main

import (
	"bytes"
	"io"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"ssiserve/internal/config"
	"ssiserve/internal/errors"
	"ssiserve/internal/paths"
	"ssiserve/internal/testutil"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv(paths.HomeEnvVar, t.TempDir())
	t.Setenv(config.ConfigPathEnvVar, "")
	for _, name := range config.GetSupportedEnvVars() {
		t.Setenv(name, "")
	}
}

func TestParsePort(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"8000", 8000, false},
		{"0", 0, false},
		{"65535", 65535, false},
		{"65536", 0, true},
		{"-1", 0, true},
		{"http", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parsePort(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePort(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePort(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNewApp_Defaults(t *testing.T) {
	isolateEnv(t)
	workDir := t.TempDir()

	a, err := newApp(workDir, "", io.Discard)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()

	if a.cfg.Server.Port != 8000 {
		t.Errorf("port = %d, want 8000", a.cfg.Server.Port)
	}
	if a.root != filepath.Clean(workDir) {
		t.Errorf("root = %s, want %s", a.root, workDir)
	}
}

func TestNewApp_PortArgAndRoot(t *testing.T) {
	isolateEnv(t)
	workDir := t.TempDir()
	testutil.WriteFile(t, workDir, ".ssiserve/config.json", `{"version":1,"server":{"root":"public","port":9000}}`)

	a, err := newApp(workDir, "8123", io.Discard)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()

	if a.cfg.Server.Port != 8123 {
		t.Errorf("port = %d, want 8123 from argument", a.cfg.Server.Port)
	}
	if want := filepath.Join(workDir, "public"); a.root != want {
		t.Errorf("root = %s, want %s", a.root, want)
	}
}

func TestNewApp_BadPort(t *testing.T) {
	isolateEnv(t)
	if _, err := newApp(t.TempDir(), "99999", io.Discard); err == nil {
		t.Error("expected error for out-of-range port")
	}
}

func TestRenderPath(t *testing.T) {
	isolateEnv(t)
	workDir := t.TempDir()
	testutil.WriteFile(t, workDir, "index.shtml", `<h1><!-- #include virtual="title.txt" --></h1>`)
	testutil.WriteFile(t, workDir, "title.txt", "Home")
	testutil.WriteFile(t, workDir, "empty/readme.txt", "x")

	a, err := newApp(workDir, "", io.Discard)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()

	var out bytes.Buffer
	if err := renderPath(a, "/", &out); err != nil {
		t.Fatalf("renderPath: %v", err)
	}
	if got := out.String(); got != "<h1>Home</h1>" {
		t.Errorf("output = %q", got)
	}

	out.Reset()
	if err := renderPath(a, "/index.shtml?lang=en#top", &out); err != nil {
		t.Fatalf("renderPath with query: %v", err)
	}
	if got := out.String(); got != "<h1>Home</h1>" {
		t.Errorf("output with query = %q", got)
	}

	for _, p := range []string{"/title.txt", "/empty/", "/script.py"} {
		err := renderPath(a, p, io.Discard)
		if !errors.Is(err, errors.NotFound) {
			t.Errorf("renderPath(%s) error = %v, want NOT_FOUND", p, err)
		}
	}
}

func TestPrintBanner(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printBanner(&buf, "", &net.TCPAddr{IP: net.IPv4zero, Port: 8000})
	got := buf.String()
	if !strings.HasPrefix(got, "Serving HTTP on 0.0.0.0 port 8000") {
		t.Errorf("banner = %q", got)
	}
	if !strings.Contains(got, "http://localhost:8000/") {
		t.Errorf("banner missing URL: %q", got)
	}

	buf.Reset()
	printBanner(&buf, "127.0.0.1", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9001})
	if !strings.Contains(buf.String(), "http://127.0.0.1:9001/") {
		t.Errorf("banner = %q", buf.String())
	}
}
