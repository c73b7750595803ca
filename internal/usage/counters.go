package usage

import "sync/atomic"

// Counters provides lock-free counters for the live usage view. History is
// queried from the backend.
type Counters struct {
	totalRequests atomic.Int64
	successCount  atomic.Int64
	failureCount  atomic.Int64
	degradedCount atomic.Int64
	totalTokens   atomic.Int64
}

// NewCounters creates a new counter set initialized to zero.
func NewCounters() *Counters {
	return &Counters{}
}

// Record counts one run. A degraded run is also a failed run.
func (c *Counters) Record(failed, degraded bool, tokens int64) {
	if c == nil {
		return
	}
	c.totalRequests.Add(1)
	if failed {
		c.failureCount.Add(1)
	} else {
		c.successCount.Add(1)
	}
	if degraded {
		c.degradedCount.Add(1)
	}
	c.totalTokens.Add(tokens)
}

// Snapshot returns current counter values.
func (c *Counters) Snapshot() CounterSnapshot {
	if c == nil {
		return CounterSnapshot{}
	}
	return CounterSnapshot{
		TotalRequests: c.totalRequests.Load(),
		SuccessCount:  c.successCount.Load(),
		FailureCount:  c.failureCount.Load(),
		DegradedCount: c.degradedCount.Load(),
		TotalTokens:   c.totalTokens.Load(),
	}
}

// Reset zeroes all counters.
func (c *Counters) Reset() {
	if c == nil {
		return
	}
	c.Bootstrap(AggregatedStats{})
}

// Bootstrap seeds the counters from persisted history. Call once at startup.
func (c *Counters) Bootstrap(stats AggregatedStats) {
	if c == nil {
		return
	}
	c.totalRequests.Store(stats.TotalRequests)
	c.successCount.Store(stats.SuccessCount)
	c.failureCount.Store(stats.FailureCount)
	c.degradedCount.Store(stats.DegradedCount)
	c.totalTokens.Store(stats.TotalTokens)
}

// CounterSnapshot is a point-in-time view of the counters.
type CounterSnapshot struct {
	TotalRequests int64 `json:"total_requests"`
	SuccessCount  int64 `json:"success_count"`
	FailureCount  int64 `json:"failure_count"`
	DegradedCount int64 `json:"degraded_count"`
	TotalTokens   int64 `json:"total_tokens"`
}
