// Package storage implements SQLite persistence for the audit trail.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"alpharesearch/gateway/pkg/audit"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Driver selects "sqlite3" (mattn, cgo) or "sqlite" (modernc, pure
	// Go). The pure Go driver avoids a C toolchain at the cost of some
	// throughput, which the audit trail does not need.
	Driver string

	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Driver:       "sqlite3",
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements audit.Storage on SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database and initializes the schema.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = "sqlite3"
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, audit.NewStorageError(config.Driver, "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("audit storage initialized",
		"driver", config.Driver,
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize applies PRAGMAs and creates the schema. PRAGMAs go through
// Exec so both drivers handle them the same way.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError(s.config.Driver, "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return audit.NewStorageError(s.config.Driver, "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError(s.config.Driver, "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError(s.config.Driver, "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil && err != sql.ErrNoRows {
		return audit.NewStorageError(s.config.Driver, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError(s.config.Driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Save inserts an audit record.
func (s *SQLiteStorage) Save(ctx context.Context, record *audit.Record) error {
	query := `
		INSERT INTO audit_log (
			id, request_id, trace_id, operation, method, path,
			recorded_at, status, latency_ms, outcome, error_message, remote_addr
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var traceID, errorMessage, remoteAddr interface{}
	if record.TraceID != "" {
		traceID = record.TraceID
	}
	if record.ErrorMessage != "" {
		errorMessage = record.ErrorMessage
	}
	if record.RemoteAddr != "" {
		remoteAddr = record.RemoteAddr
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.RequestID, traceID, record.Operation, record.Method, record.Path,
		record.RecordedAt.UTC(), record.Status, record.LatencyMS, record.Outcome, errorMessage, remoteAddr,
	)
	if err != nil {
		return audit.NewStorageError(s.config.Driver, "save", err)
	}
	return nil
}

// Find returns records matching the query, newest first.
func (s *SQLiteStorage) Find(ctx context.Context, query audit.Query) ([]*audit.Record, error) {
	var conditions []string
	var args []interface{}

	if query.RequestID != "" {
		conditions = append(conditions, "request_id = ?")
		args = append(args, query.RequestID)
	}
	if query.TraceID != "" {
		conditions = append(conditions, "trace_id = ?")
		args = append(args, query.TraceID)
	}
	if query.Operation != "" {
		conditions = append(conditions, "operation = ?")
		args = append(args, query.Operation)
	}
	if !query.Since.IsZero() {
		conditions = append(conditions, "recorded_at >= ?")
		args = append(args, query.Since.UTC())
	}
	if !query.Until.IsZero() {
		conditions = append(conditions, "recorded_at <= ?")
		args = append(args, query.Until.UTC())
	}

	sqlQuery := `
		SELECT id, request_id, COALESCE(trace_id, ''), operation, method, path,
		       recorded_at, status, latency_ms, outcome,
		       COALESCE(error_message, ''), COALESCE(remote_addr, '')
		FROM audit_log
	`
	if len(conditions) > 0 {
		sqlQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	sqlQuery += " ORDER BY recorded_at DESC"

	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}
	sqlQuery += " LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewStorageError(s.config.Driver, "find", err)
	}
	defer rows.Close()

	var records []*audit.Record
	for rows.Next() {
		var record audit.Record
		if err := rows.Scan(
			&record.ID, &record.RequestID, &record.TraceID, &record.Operation,
			&record.Method, &record.Path, &record.RecordedAt, &record.Status,
			&record.LatencyMS, &record.Outcome, &record.ErrorMessage, &record.RemoteAddr,
		); err != nil {
			return nil, audit.NewStorageError(s.config.Driver, "scan", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError(s.config.Driver, "find", err)
	}

	return records, nil
}

// DeleteBefore removes records older than the cutoff.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM audit_log WHERE recorded_at < ?", cutoff.UTC())
	if err != nil {
		return 0, audit.NewStorageError(s.config.Driver, "prune", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError(s.config.Driver, "prune", err)
	}
	return deleted, nil
}

// DeleteExcess keeps only the newest keep records.
func (s *SQLiteStorage) DeleteExcess(ctx context.Context, keep int) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM audit_log WHERE id NOT IN (
			SELECT id FROM audit_log ORDER BY recorded_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, audit.NewStorageError(s.config.Driver, "trim", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError(s.config.Driver, "trim", err)
	}
	return deleted, nil
}

// Close releases the underlying database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
