// Package telemetry collects embedding-provider usage statistics.
// The collector is constructed explicitly and passed to whoever records
// into it; there is no process-wide singleton, so tests can create and
// discard collectors freely.
package telemetry

import "sync"

// UsageStats accumulates API call and token counts. Safe for concurrent
// use: readers share the lock, writers take it exclusively for the single
// top-level mutation.
type UsageStats struct {
	mu            sync.RWMutex
	embeddingCalls int
	promptTokens   int
	totalTokens    int
	cacheHits      int
	cacheMisses    int
}

// UsageSnapshot is a point-in-time copy of the counters.
type UsageSnapshot struct {
	EmbeddingCalls int
	PromptTokens   int
	TotalTokens    int
	CacheHits      int
	CacheMisses    int
}

// NewUsageStats creates an empty collector.
func NewUsageStats() *UsageStats {
	return &UsageStats{}
}

// RecordEmbedding records one embedding API call and its token usage.
func (u *UsageStats) RecordEmbedding(promptTokens, totalTokens int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.embeddingCalls++
	u.promptTokens += promptTokens
	u.totalTokens += totalTokens
}

// RecordCacheHit records an embedding served from cache.
func (u *UsageStats) RecordCacheHit() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.cacheHits++
}

// RecordCacheMiss records an embedding that had to be computed.
func (u *UsageStats) RecordCacheMiss() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.cacheMisses++
}

// Snapshot returns a copy of the current counters.
func (u *UsageStats) Snapshot() UsageSnapshot {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return UsageSnapshot{
		EmbeddingCalls: u.embeddingCalls,
		PromptTokens:   u.promptTokens,
		TotalTokens:    u.totalTokens,
		CacheHits:      u.cacheHits,
		CacheMisses:    u.cacheMisses,
	}
}

// Reset zeroes all counters.
func (u *UsageStats) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.embeddingCalls = 0
	u.promptTokens = 0
	u.totalTokens = 0
	u.cacheHits = 0
	u.cacheMisses = 0
}
