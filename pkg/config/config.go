package config

import (
	"fmt"
	"time"
)

// Config is the root gateway configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Audit     AuditConfig     `yaml:"audit"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig controls the gateway's own HTTP listener.
type ServerConfig struct {
	// ListenAddress is the host:port the gateway binds to.
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds reading the inbound request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing the response. It must exceed the
	// backend timeout or long generation requests get cut off.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout bounds keep-alive connections.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes caps inbound header size.
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// BackendConfig locates the Alpha Research backend.
type BackendConfig struct {
	// Host of the backend API server.
	Host string `yaml:"host"`

	// Port of the backend API server.
	Port int `yaml:"port"`

	// Scheme is http or https.
	Scheme string `yaml:"scheme"`

	// Timeout is the per-request ceiling for backend calls.
	Timeout time.Duration `yaml:"timeout"`
}

// BaseURL renders the backend base address, resolved once at startup.
func (b *BackendConfig) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d", b.Scheme, b.Host, b.Port)
}

// AuditConfig controls the audit trail store.
type AuditConfig struct {
	// Enabled turns the audit trail on.
	Enabled bool `yaml:"enabled"`

	// Driver selects the SQLite driver: "sqlite3" (cgo) or "sqlite"
	// (pure Go).
	Driver string `yaml:"driver"`

	// Path is the SQLite database file.
	Path string `yaml:"path"`

	// BufferSize is the async recorder queue depth. Records are dropped
	// with a log line when the queue is full.
	BufferSize int `yaml:"buffer_size"`

	// RetentionDays is how long records are kept.
	RetentionDays int `yaml:"retention_days"`

	// RetentionSchedule is a cron expression for the pruning job.
	RetentionSchedule string `yaml:"retention_schedule"`

	// MaxRecords caps the store size regardless of age. Zero disables
	// the cap.
	MaxRecords int `yaml:"max_records"`
}

// TelemetryConfig controls logging, metrics and health endpoints.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is json or text.
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled exposes /metrics when true.
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	Path string `yaml:"path"`
}

// CORSConfig controls cross-origin headers.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	ExposedHeaders []string `yaml:"exposed_headers"`
	MaxAge         int      `yaml:"max_age"`
}
