// Package usage keeps the per-run usage ledger: in-memory counters that are
// always on, plus an optional sqlite or postgres backend for history.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/FahadBinHussain/Xenovate/internal/config"
	"github.com/FahadBinHussain/Xenovate/internal/resilience"
)

// Backend defines the persistence contract for usage records.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Enqueue adds a record to the write queue without blocking.
	Enqueue(record UsageRecord)

	// Flush forces pending records to be written to storage.
	Flush(ctx context.Context) error

	QueryGlobalStats(ctx context.Context, since time.Time) (*AggregatedStats, error)
	QueryDailyStats(ctx context.Context, since time.Time) ([]DailyStats, error)
	QueryModelStats(ctx context.Context, since time.Time) ([]ModelStats, error)
	QueryOperationStats(ctx context.Context, since time.Time) ([]OperationStats, error)

	// Cleanup removes records older than before.
	Cleanup(ctx context.Context, before time.Time) (int64, error)

	// Start begins the write and retention loops.
	Start() error

	// Stop drains pending writes and closes the store.
	Stop() error
}

// BackendConfig holds parameters for backend initialization.
type BackendConfig struct {
	// DSN is sqlite://path or postgres://...
	DSN           string
	BatchSize     int
	FlushInterval time.Duration
	RetentionDays int
	// Retry governs batch writes. Zero value means resilience.DefaultRetryConfig.
	Retry resilience.RetryConfig
}

// BackendConfigFrom maps the usage section of the service config.
func BackendConfigFrom(cfg *config.Config) BackendConfig {
	return BackendConfig{
		DSN:           cfg.Usage.DSN,
		BatchSize:     cfg.Usage.BatchSize,
		FlushInterval: cfg.FlushInterval(),
		RetentionDays: cfg.Usage.RetentionDays,
	}
}

const (
	defaultBatchSize     = 100
	defaultFlushInterval = 5 * time.Second
	defaultRetentionDays = 30
	queueSize            = 1000
)

func (c BackendConfig) withDefaults() BackendConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = defaultRetentionDays
	}
	if c.Retry.MaxRetries == 0 && c.Retry.BaseDelay == 0 {
		c.Retry = resilience.DefaultRetryConfig
	}
	return c
}

// NewBackend opens the backend selected by the DSN scheme. An empty DSN
// returns (nil, nil): the ledger then runs on counters alone.
func NewBackend(cfg BackendConfig) (Backend, error) {
	parsed, err := config.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, nil
	}

	switch parsed.Backend {
	case config.BackendPostgres:
		return NewPostgresBackend(parsed.URL, cfg)
	case config.BackendSQLite:
		return NewSQLiteBackend(parsed.Path, cfg)
	default:
		return nil, fmt.Errorf("unknown usage backend: %q", parsed.Backend)
	}
}
