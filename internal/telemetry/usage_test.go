package telemetry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageStats(t *testing.T) {
	u := NewUsageStats()

	u.RecordEmbedding(10, 12)
	u.RecordEmbedding(5, 5)
	u.RecordCacheHit()
	u.RecordCacheMiss()
	u.RecordCacheMiss()

	snap := u.Snapshot()
	assert.Equal(t, 2, snap.EmbeddingCalls)
	assert.Equal(t, 15, snap.PromptTokens)
	assert.Equal(t, 17, snap.TotalTokens)
	assert.Equal(t, 1, snap.CacheHits)
	assert.Equal(t, 2, snap.CacheMisses)

	u.Reset()
	assert.Equal(t, UsageSnapshot{}, u.Snapshot())
}

func TestUsageStatsConcurrent(t *testing.T) {
	u := NewUsageStats()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				u.RecordEmbedding(1, 1)
				u.RecordCacheHit()
				_ = u.Snapshot()
			}
		}()
	}
	wg.Wait()

	snap := u.Snapshot()
	assert.Equal(t, 1000, snap.EmbeddingCalls)
	assert.Equal(t, 1000, snap.CacheHits)
}
