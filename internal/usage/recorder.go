package usage

import (
	"context"
	"time"

	log "github.com/FahadBinHussain/Xenovate/internal/logging"
)

// Recorder is the entry point used by the operation service. It updates the
// counters on every run and forwards records to the backend, if any.
// A nil *Recorder discards everything.
type Recorder struct {
	counters *Counters
	backend  Backend
}

// NewRecorder wraps backend, which may be nil.
func NewRecorder(backend Backend) *Recorder {
	return &Recorder{counters: NewCounters(), backend: backend}
}

// Open builds the backend described by cfg, starts it and seeds the counters
// from stored history. An empty DSN yields a counters-only recorder.
func Open(cfg BackendConfig) (*Recorder, error) {
	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, err
	}
	if backend == nil {
		return NewRecorder(nil), nil
	}
	return openBackend(backend)
}

// openBackend starts backend and seeds the counters. A backend that fails to
// start is stopped before the error is returned.
func openBackend(backend Backend) (*Recorder, error) {
	r := NewRecorder(backend)
	if err := backend.Start(); err != nil {
		if stopErr := backend.Stop(); stopErr != nil {
			log.Warnf("failed to close usage backend after start error: %v", stopErr)
		}
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	stats, err := backend.QueryGlobalStats(ctx, time.Time{})
	if err != nil {
		log.Warnf("failed to bootstrap usage counters from history: %v", err)
	} else if stats != nil {
		r.counters.Bootstrap(*stats)
		log.Infof("bootstrapped usage counters: %d requests, %d tokens", stats.TotalRequests, stats.TotalTokens)
	}
	return r, nil
}

// Record counts rec and queues it for persistence.
func (r *Recorder) Record(rec UsageRecord) {
	if r == nil {
		return
	}
	if rec.RequestedAt.IsZero() {
		rec.RequestedAt = time.Now()
	}
	if rec.TotalTokens == 0 {
		rec.TotalTokens = rec.PromptTokens + rec.OutputTokens
	}
	r.counters.Record(rec.Failed, rec.Degraded, rec.TotalTokens)
	if r.backend != nil {
		r.backend.Enqueue(rec)
	}
}

// Counters returns the live counter values.
func (r *Recorder) Counters() CounterSnapshot {
	if r == nil {
		return CounterSnapshot{}
	}
	return r.counters.Snapshot()
}

// Backend returns the persistence backend, or nil.
func (r *Recorder) Backend() Backend {
	if r == nil {
		return nil
	}
	return r.backend
}

// Snapshot combines the counters with backend aggregates since the given time.
func (r *Recorder) Snapshot(ctx context.Context, since time.Time) (UsageSnapshot, error) {
	c := r.Counters()
	snap := UsageSnapshot{
		TotalRequests: c.TotalRequests,
		SuccessCount:  c.SuccessCount,
		FailureCount:  c.FailureCount,
		DegradedCount: c.DegradedCount,
		TotalTokens:   c.TotalTokens,
	}
	backend := r.Backend()
	if backend == nil {
		return snap, nil
	}
	snap.Persistent = true

	daily, err := backend.QueryDailyStats(ctx, since)
	if err != nil {
		return snap, err
	}
	snap.RequestsByDay = make(map[string]int64, len(daily))
	snap.TokensByDay = make(map[string]int64, len(daily))
	for _, d := range daily {
		snap.RequestsByDay[d.Day] = d.Requests
		snap.TokensByDay[d.Day] = d.Tokens
	}

	if snap.Models, err = backend.QueryModelStats(ctx, since); err != nil {
		return snap, err
	}
	if snap.Operations, err = backend.QueryOperationStats(ctx, since); err != nil {
		return snap, err
	}
	return snap, nil
}

// Close drains and stops the backend.
func (r *Recorder) Close() error {
	if r == nil || r.backend == nil {
		return nil
	}
	return r.backend.Stop()
}
