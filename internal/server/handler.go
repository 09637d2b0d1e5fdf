package server

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"ssiserve/internal/errors"
	"ssiserve/internal/rendercache"
)

// handle serves GET and HEAD. Rendered documents are materialized into a
// per-request session that is disposed before the handler returns.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		WriteSsiError(w, r, errors.NewSsiError(errors.UnsupportedMethod,
			fmt.Sprintf("Unsupported method (%q)", r.Method), nil))
		return
	}

	logger := s.logger.With("requestID", GetRequestID(r.Context()))

	res, err := s.resolver.Resolve(r.URL.Path)
	if err != nil {
		logger.Debug("Path rejected", "path", r.URL.Path, "error", err.Error())
		WriteSsiError(w, r, asSsiError(err))
		return
	}

	if !res.Render {
		if _, err := os.Stat(res.Path); err != nil {
			NotFound(w, r, "File not found")
			return
		}
		http.ServeFile(w, r, res.Path)
		return
	}

	result, err := s.engine.Render(res.Path, res.URLPath)
	if err != nil {
		logger.Warn("Render failed", "path", res.URLPath, "error", err.Error())
		WriteSsiError(w, r, asSsiError(err))
		return
	}
	if len(result.Failures) > 0 {
		logger.Info("Rendered with include errors",
			"path", res.URLPath,
			"includes", result.Includes,
			"failures", len(result.Failures),
		)
	}

	session := rendercache.NewSession(s.tempDir, logger)
	defer session.Dispose()

	handle, err := session.Materialize(result.Content, result.Suffix)
	if err != nil {
		logger.Error("Materialize failed", "path", res.URLPath, "error", err.Error())
		InternalError(w, r, "Internal server error")
		return
	}

	f, err := os.Open(handle.Path)
	if err != nil {
		logger.Error("Open rendered file failed", "path", handle.Path, "error", err.Error())
		InternalError(w, r, "Internal server error")
		return
	}
	// Closed before the deferred Dispose runs.
	defer f.Close()

	// No Last-Modified: the output depends on every included file.
	http.ServeContent(w, r, handle.Name(), time.Time{}, f)
}

func asSsiError(err error) *errors.SsiError {
	var se *errors.SsiError
	if stderrors.As(err, &se) {
		return se
	}
	return errors.NewSsiError(errors.CodeOf(err), "Internal server error", err)
}
