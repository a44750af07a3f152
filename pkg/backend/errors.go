package backend

import (
	"fmt"
	"time"
)

// Error represents a failure reported by the backend itself: the request
// reached the backend and it answered with a non-2xx status. The upstream
// status code is preserved so the gateway can relay it verbatim.
type Error struct {
	// Op is the backend operation that failed (see the Op* constants).
	Op string

	// StatusCode is the backend's HTTP status code.
	StatusCode int

	// Detail is the parsed error detail from the response body.
	Detail Detail
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("backend %s failed (status %d): %s", e.Op, e.StatusCode, e.Detail.String())
}

// TraceID returns the backend trace identifier, if the detail carried one.
func (e *Error) TraceID() string {
	if e.Detail.Structured != nil {
		return e.Detail.Structured.TraceID
	}
	return ""
}

// TransportError represents a request that never produced a backend
// response: connection refused, DNS failure, or a timeout. These are
// indistinguishable to the browser and all map to the same fixed-shape
// gateway error.
type TransportError struct {
	// Op is the backend operation that failed.
	Op string

	// Timeout reports whether the failure was a deadline expiry rather
	// than a connection-level failure.
	Timeout bool

	// Elapsed is how long the attempt ran before failing.
	Elapsed time.Duration

	// Cause is the underlying transport error.
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("backend %s timed out after %s: %v", e.Op, e.Elapsed, e.Cause)
	}
	return fmt.Sprintf("backend %s unreachable: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ParseError represents a backend success response whose body could not be
// read. The backend answered 2xx but the payload was unusable.
type ParseError struct {
	// Op is the backend operation whose response failed to read.
	Op string

	// Cause is the underlying read error.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("backend %s response unreadable: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
