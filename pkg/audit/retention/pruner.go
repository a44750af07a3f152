// Package retention removes aged audit records on a cron schedule.
package retention

import (
	"context"
	"log/slog"
	"time"

	"alpharesearch/gateway/pkg/audit"
)

// Config contains configuration for retention pruning.
type Config struct {
	// RetentionDays is how long records are kept.
	// Default: 30
	RetentionDays int

	// PruneSchedule is a standard cron expression. Empty disables the
	// scheduler.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// MaxRecords caps the store size regardless of age. Zero disables
	// the cap.
	MaxRecords int
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 30,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner deletes audit records older than the retention window.
type Pruner struct {
	storage audit.Storage
	config  *Config
	logger  *slog.Logger
}

// NewPruner creates a new pruner.
func NewPruner(storage audit.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "audit.retention"),
	}
}

// Prune deletes records past the retention window, then trims the store
// to MaxRecords when a cap is set. Returns how many records were removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -p.config.RetentionDays)

	deleted, err := p.storage.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	var trimmed int64
	if p.config.MaxRecords > 0 {
		trimmed, err = p.storage.DeleteExcess(ctx, p.config.MaxRecords)
		if err != nil {
			return deleted, err
		}
	}

	p.logger.Info("audit records pruned",
		"deleted", deleted,
		"trimmed", trimmed,
		"cutoff", cutoff.Format(time.RFC3339),
		"retention_days", p.config.RetentionDays,
	)
	return deleted + trimmed, nil
}
