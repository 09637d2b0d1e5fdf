// Package rendercache holds rendered documents on disk for the lifetime of
// one request.
package rendercache

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"ssiserve/internal/errors"
	"ssiserve/internal/slogutil"
)

// FilePrefix starts the name of every file a Session creates.
const FilePrefix = "ssiserve-"

// Handle is one materialized rendered document.
type Handle struct {
	Path   string
	Suffix string
}

// Name returns the base name of the handle, which carries the delivery
// suffix used for content-type detection.
func (h Handle) Name() string {
	return filepath.Base(h.Path)
}

// Session owns the ephemeral resources of a single request. Create one per
// request and defer Dispose.
type Session struct {
	dir    string
	logger *slog.Logger

	mu      sync.Mutex
	handles []Handle
}

// NewSession creates a session writing into dir, or os.TempDir() if dir
// is empty.
func NewSession(dir string, logger *slog.Logger) *Session {
	if dir == "" {
		dir = os.TempDir()
	}
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Session{dir: dir, logger: logger}
}

// Materialize writes content to a new uniquely named file and records it
// for disposal.
func (s *Session) Materialize(content []byte, suffix string) (Handle, error) {
	suffix = normalizeSuffix(suffix)
	path := filepath.Join(s.dir, FilePrefix+uuid.New().String()+suffix)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return Handle{}, fmt.Errorf("create render file: %w", err)
	}
	h := Handle{Path: path, Suffix: suffix}

	// Record before writing so a partial file is still disposed.
	s.mu.Lock()
	s.handles = append(s.handles, h)
	s.mu.Unlock()

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return Handle{}, fmt.Errorf("write render file: %w", err)
	}
	if err := f.Close(); err != nil {
		return Handle{}, fmt.Errorf("close render file: %w", err)
	}

	s.logger.Debug("Materialized render",
		"path", path,
		"bytes", len(content),
	)
	return h, nil
}

// Dispose removes every resource the session created and returns how many
// were removed. Failures are logged, never returned. Safe to call twice.
func (s *Session) Dispose() int {
	s.mu.Lock()
	handles := s.handles
	s.handles = nil
	s.mu.Unlock()

	removed := 0
	for _, h := range handles {
		err := os.Remove(h.Path)
		switch {
		case err == nil:
			removed++
		case stderrors.Is(err, fs.ErrNotExist):
		default:
			cleanupErr := errors.NewSsiError(errors.ResourceCleanupFailure, "remove render file", err)
			s.logger.Warn("Render cleanup failed",
				"code", string(cleanupErr.Code),
				"path", h.Path,
				"error", cleanupErr.Error(),
			)
		}
	}
	return removed
}

// Handles returns a snapshot of the live handles.
func (s *Session) Handles() []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Handle, len(s.handles))
	copy(out, s.handles)
	return out
}

func normalizeSuffix(suffix string) string {
	suffix = strings.ToLower(suffix)
	if suffix != "" && !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	if suffix == ".shtml" {
		return ".html"
	}
	return suffix
}
