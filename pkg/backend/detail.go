package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StructuredDetail is the structured form of the backend's error detail,
// emitted by workflow endpoints when a server-side process fails. The
// captured stderr/stdout streams and the trace ID let the dashboard surface
// actionable diagnostics instead of a bare status code.
type StructuredDetail struct {
	// Error is the human-readable failure summary.
	Error string `json:"error"`

	// TraceID correlates this failure with the backend's log entry.
	TraceID string `json:"trace_id,omitempty"`

	// Stderr is the captured standard-error stream of the failed process.
	Stderr string `json:"stderr,omitempty"`

	// Stdout is the captured standard-output stream of the failed process.
	Stdout string `json:"stdout,omitempty"`

	// Suggestion is an optional remediation hint from the backend.
	Suggestion string `json:"suggestion,omitempty"`

	// ExitCode is the process exit code, when the failure was a process.
	ExitCode *int `json:"exit_code,omitempty"`
}

// Detail is the backend's error detail: either a structured object or a
// plain string. The backend emits both shapes depending on the failing
// route, so the union is explicit rather than probed at call sites.
//
// Exactly one of Structured and Message is set after unmarshaling.
type Detail struct {
	// Structured is set when the detail was a JSON object.
	Structured *StructuredDetail

	// Message is set when the detail was a plain string (or any other
	// non-object value, rendered verbatim).
	Message string
}

// UnmarshalJSON accepts both detail shapes.
func (d *Detail) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '{':
		var s StructuredDetail
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("failed to parse structured error detail: %w", err)
		}
		d.Structured = &s
		return nil

	case '"':
		var msg string
		if err := json.Unmarshal(trimmed, &msg); err != nil {
			return fmt.Errorf("failed to parse error detail string: %w", err)
		}
		d.Message = msg
		return nil

	default:
		// Numbers, booleans, arrays: keep the raw form readable.
		d.Message = string(trimmed)
		return nil
	}
}

// IsStructured reports whether the detail carried a structured object.
func (d Detail) IsStructured() bool {
	return d.Structured != nil
}

// String renders the detail for logs and error messages.
func (d Detail) String() string {
	if d.Structured != nil {
		if d.Structured.Error != "" {
			return d.Structured.Error
		}
		return "structured error detail"
	}
	return d.Message
}
