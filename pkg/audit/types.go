package audit

import (
	"context"
	"time"
)

// Outcome classifies how a proxied request ended.
const (
	OutcomeOK        = "ok"
	OutcomeBadInput  = "bad_input"
	OutcomeBackend   = "backend_error"
	OutcomeTransport = "transport_failure"
	OutcomeInternal  = "internal_error"
)

// Record is one audit trail entry. ID and RecordedAt are assigned by the
// Recorder; callers fill in the rest.
type Record struct {
	// ID is a UUID assigned at record time.
	ID string `json:"id"`

	// RequestID correlates with the X-Request-ID header and logs.
	RequestID string `json:"request_id"`

	// TraceID is the backend's trace identifier, when the backend
	// returned one.
	TraceID string `json:"trace_id,omitempty"`

	// Operation is the backend operation name, e.g. "generate_article".
	Operation string `json:"operation"`

	// Method and Path describe the inbound gateway request.
	Method string `json:"method"`
	Path   string `json:"path"`

	// RecordedAt is when the record was accepted by the Recorder.
	RecordedAt time.Time `json:"recorded_at"`

	// Status is the HTTP status returned to the client.
	Status int `json:"status"`

	// LatencyMS is the end-to-end handler latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// Outcome is one of the Outcome* constants.
	Outcome string `json:"outcome"`

	// ErrorMessage is the normalized client-facing error, empty on
	// success.
	ErrorMessage string `json:"error_message,omitempty"`

	// RemoteAddr is the client address.
	RemoteAddr string `json:"remote_addr,omitempty"`
}

// Query filters audit trail lookups. Zero-valued fields are ignored.
type Query struct {
	RequestID string
	TraceID   string
	Operation string
	Since     time.Time
	Until     time.Time
	Limit     int
}

// Storage persists audit records.
type Storage interface {
	// Save inserts a record.
	Save(ctx context.Context, record *Record) error

	// Find returns records matching the query, newest first.
	Find(ctx context.Context, query Query) ([]*Record, error)

	// DeleteBefore removes records older than the cutoff and returns
	// how many were deleted.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteExcess keeps only the newest keep records and returns how
	// many were deleted.
	DeleteExcess(ctx context.Context, keep int) (int64, error)

	// Close releases the underlying database.
	Close() error
}
