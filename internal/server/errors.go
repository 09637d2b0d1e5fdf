package server

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"golang.org/x/net/html"

	"ssiserve/internal/errors"
)

// ErrorCodeHeader carries the error code of a failed response.
const ErrorCodeHeader = "X-Ssi-Error-Code"

// WriteError writes a small HTML error page for err.
func WriteError(w http.ResponseWriter, r *http.Request, err error, status int) {
	code := errors.CodeOf(err)
	message := http.StatusText(status)
	var se *errors.SsiError
	if stderrors.As(err, &se) && se.Message != "" {
		message = se.Message
	}

	h := w.Header()
	h.Del("Content-Length")
	h.Del("Content-Encoding")
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set(ErrorCodeHeader, string(code))
	if status == http.StatusNotImplemented {
		h.Set("Allow", "GET, HEAD")
	}
	w.WriteHeader(status)

	if r != nil && r.Method == http.MethodHead {
		return
	}
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Error response</title></head>
<body>
<h1>Error response</h1>
<p>Error code: %d</p>
<p>Message: %s.</p>
</body>
</html>
`, status, html.EscapeString(message))
}

// WriteSsiError writes err with automatic status code mapping
func WriteSsiError(w http.ResponseWriter, r *http.Request, err *errors.SsiError) {
	WriteError(w, r, err, MapSsiErrorToStatus(err.Code))
}

// MapSsiErrorToStatus maps error codes to HTTP status codes
func MapSsiErrorToStatus(code errors.ErrorCode) int {
	switch code {
	case errors.NotFound:
		return http.StatusNotFound // 404
	case errors.UnsupportedMethod:
		return http.StatusNotImplemented // 501
	case errors.IncludeForbidden:
		return http.StatusForbidden // 403
	case errors.InternalError:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

// NotFound writes a 404 Not Found error
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	WriteSsiError(w, r, errors.NewSsiError(errors.NotFound, message, nil))
}

// InternalError writes a 500 Internal Server Error
func InternalError(w http.ResponseWriter, r *http.Request, message string) {
	WriteSsiError(w, r, errors.NewSsiError(errors.InternalError, message, nil))
}
