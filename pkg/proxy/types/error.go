package types

import "alpharesearch/gateway/pkg/backend"

// TransportFailureMessage is the fixed message returned when the research
// backend cannot be reached at all. The wording is part of the frontend
// contract and must not change.
const TransportFailureMessage = "Failed to connect to API server. Make sure the backend service is running."

// ErrorEnvelope is the JSON error body returned to the dashboard.
type ErrorEnvelope struct {
	// Error is the human-readable message, already normalized (missing
	// dependency rewrite, trace-ID suffix) before it reaches the wire.
	Error string `json:"error"`

	// Detail carries the backend's structured diagnostics when present:
	// stderr, stdout, suggestion, exit code and trace ID. Omitted for
	// transport failures and request-validation errors.
	Detail *backend.StructuredDetail `json:"detail,omitempty"`

	// Status is the HTTP status the envelope is written with. Omitted
	// from the JSON when zero, in which case 500 is used on the wire.
	Status int `json:"status,omitempty"`
}

// HTTPStatusCode returns the wire status for the envelope.
func (e *ErrorEnvelope) HTTPStatusCode() int {
	if e.Status == 0 {
		return 500
	}
	return e.Status
}
