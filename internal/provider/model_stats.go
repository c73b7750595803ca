package provider

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"
)

const numShards = 16

type statShard struct {
	mu    sync.RWMutex
	stats map[string]*modelMetrics
}

// ModelStats tracks per-model call outcomes for the status endpoint.
type ModelStats struct {
	shards [numShards]*statShard
}

type modelMetrics struct {
	successCount   atomic.Int64
	failureCount   atomic.Int64
	totalLatencyNs atomic.Int64 // cumulative latency of successful calls
	lastUsed       atomic.Int64 // unix nano
	lastSuccess    atomic.Int64 // unix nano
}

// ModelSnapshot is a point-in-time copy of one model's counters.
type ModelSnapshot struct {
	SuccessCount int64
	FailureCount int64
	AvgLatency   time.Duration
	LastUsed     time.Time
	LastSuccess  time.Time
}

func shardIdx(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % numShards)
}

// NewModelStats creates an empty tracker.
func NewModelStats() *ModelStats {
	ms := &ModelStats{}
	for i := range ms.shards {
		ms.shards[i] = &statShard{stats: make(map[string]*modelMetrics)}
	}
	return ms
}

func (ms *ModelStats) get(model string) *modelMetrics {
	shard := ms.shards[shardIdx(model)]
	shard.mu.RLock()
	m := shard.stats[model]
	shard.mu.RUnlock()
	return m
}

func (ms *ModelStats) getOrCreate(model string) *modelMetrics {
	if m := ms.get(model); m != nil {
		return m
	}
	shard := ms.shards[shardIdx(model)]
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if m := shard.stats[model]; m != nil {
		return m
	}
	m := &modelMetrics{}
	shard.stats[model] = m
	return m
}

// RecordSuccess records a successful call and its latency.
func (ms *ModelStats) RecordSuccess(model string, latency time.Duration) {
	m := ms.getOrCreate(model)
	m.successCount.Add(1)
	m.totalLatencyNs.Add(int64(latency))
	now := time.Now().UnixNano()
	m.lastUsed.Store(now)
	m.lastSuccess.Store(now)
}

// RecordFailure records a failed call of any category.
func (ms *ModelStats) RecordFailure(model string) {
	m := ms.getOrCreate(model)
	m.failureCount.Add(1)
	m.lastUsed.Store(time.Now().UnixNano())
}

// Snapshot returns the counters for model. Unknown models read as zero.
func (ms *ModelStats) Snapshot(model string) ModelSnapshot {
	m := ms.get(model)
	if m == nil {
		return ModelSnapshot{}
	}
	snap := ModelSnapshot{
		SuccessCount: m.successCount.Load(),
		FailureCount: m.failureCount.Load(),
	}
	if snap.SuccessCount > 0 {
		snap.AvgLatency = time.Duration(m.totalLatencyNs.Load() / snap.SuccessCount)
	}
	if ts := m.lastUsed.Load(); ts > 0 {
		snap.LastUsed = time.Unix(0, ts)
	}
	if ts := m.lastSuccess.Load(); ts > 0 {
		snap.LastSuccess = time.Unix(0, ts)
	}
	return snap
}
