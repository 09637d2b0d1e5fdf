package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// NotFound indicates the URL does not map to a servable file
	NotFound ErrorCode = "NOT_FOUND"
	// IncludeTargetMissing indicates an include target does not exist or cannot be read
	IncludeTargetMissing ErrorCode = "INCLUDE_TARGET_MISSING"
	// IncludeCycle indicates a document includes itself through its include chain
	IncludeCycle ErrorCode = "INCLUDE_CYCLE"
	// IncludeTooDeep indicates the include chain exceeds the configured max depth
	IncludeTooDeep ErrorCode = "INCLUDE_TOO_DEEP"
	// IncludeForbidden indicates an include target outside the document root or with a forbidden extension
	IncludeForbidden ErrorCode = "INCLUDE_FORBIDDEN"
	// ResourceCleanupFailure indicates an ephemeral render resource could not be removed
	ResourceCleanupFailure ErrorCode = "RESOURCE_CLEANUP_FAILURE"
	// UnsupportedMethod indicates an HTTP method other than GET or HEAD
	UnsupportedMethod ErrorCode = "UNSUPPORTED_METHOD"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// SsiError represents a server error with code, message and optional details
type SsiError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// NewSsiError creates a new SsiError
func NewSsiError(code ErrorCode, message string, cause error) *SsiError {
	return &SsiError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *SsiError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SsiError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *SsiError) WithDetails(details interface{}) *SsiError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first SsiError in err's chain,
// or InternalError if there is none.
func CodeOf(err error) ErrorCode {
	var se *SsiError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return InternalError
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	var se *SsiError
	return stderrors.As(err, &se) && se.Code == code
}

// ErrorHints maps error codes to operator-facing hints
var ErrorHints = map[ErrorCode]string{
	IncludeTargetMissing:   "check the virtual= path relative to the including document",
	IncludeCycle:           "a fragment includes itself directly or through another fragment",
	IncludeTooDeep:         "raise include.maxDepth or flatten the include chain",
	ResourceCleanupFailure: "check permissions on render.tempDir",
}

// GetHint returns the hint for an error code, or "" if none is defined
func GetHint(code ErrorCode) string {
	return ErrorHints[code]
}
