package semantic

import (
	"fmt"
	"time"
)

// BackendError represents a failure of the reasoning backend. It covers
// transport errors and non-success HTTP statuses.
type BackendError struct {
	// StatusCode is the HTTP status code (0 for transport errors).
	StatusCode int

	// Message is the error message or response body excerpt.
	Message string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("reasoning backend error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("reasoning backend error: %s", e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *BackendError) Unwrap() error {
	return e.Cause
}

// TimeoutError represents a reasoning backend call that exceeded its
// deadline, including retries.
type TimeoutError struct {
	// Timeout is the configured per-call timeout.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("reasoning backend timed out after %s", e.Timeout)
}

// ParseError represents a backend response that could not be interpreted
// as a verdict. The response is treated as untrusted free text; this error
// is logged for operators and degraded to a skip, never escalated.
type ParseError struct {
	// RawResponse is an excerpt of the response that failed to parse.
	RawResponse string

	// Cause is the underlying parse error.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("reasoning backend response parse error: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
