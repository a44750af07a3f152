// Package recorder writes audit records asynchronously so the proxy's
// request path never blocks on storage.
package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"alpharesearch/gateway/pkg/audit"
)

// Config contains configuration for the audit recorder.
type Config struct {
	// Enabled turns recording on.
	Enabled bool

	// BufferSize is the async write channel depth. When the channel is
	// full, new records are dropped with a log line rather than
	// blocking a request.
	// Default: 1000
	BufferSize int

	// WriteTimeout bounds each storage write.
	// Default: 5s
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		BufferSize:   1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder accepts audit records and persists them in the background.
type Recorder struct {
	storage    audit.Storage
	config     *Config
	recordChan chan *audit.Record
	wg         sync.WaitGroup
	closeOnce  sync.Once
	logger     *slog.Logger
}

// NewRecorder creates a recorder and starts its background worker.
func NewRecorder(storage audit.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *audit.Record, config.BufferSize),
		logger:     slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"buffer_size", config.BufferSize,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record enqueues one audit record. It assigns the record ID and
// timestamp, never blocks, and is safe for concurrent use.
func (r *Recorder) Record(_ context.Context, record audit.Record) {
	if !r.config.Enabled {
		return
	}

	record.ID = uuid.New().String()
	record.RecordedAt = time.Now().UTC()

	select {
	case r.recordChan <- &record:
	default:
		r.logger.Warn("audit buffer full, dropping record",
			"operation", record.Operation,
			"request_id", record.RequestID,
		)
	}
}

// Close drains pending records and stops the worker.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.recordChan)
	})
	r.wg.Wait()
	return nil
}

// worker drains the channel into storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for record := range r.recordChan {
		ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
		if err := r.storage.Save(ctx, record); err != nil {
			r.logger.Error("failed to persist audit record",
				"record_id", record.ID,
				"operation", record.Operation,
				"error", err,
			)
		}
		cancel()
	}
}
