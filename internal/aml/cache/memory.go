package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cardwatch/amlengine/internal/aml"
)

// MemoryCache is an in-process AnalysisCache for tests and single-node use.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	result    *aml.AMLAnalysisResult
	expiresAt time.Time
}

// NewMemoryCache creates an empty in-memory analysis cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, entityID string) (*aml.AMLAnalysisResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[entityID]
	if !ok || c.now().After(e.expiresAt) {
		return nil, ErrCacheMiss
	}
	return e.result, nil
}

func (c *MemoryCache) Set(_ context.Context, result *aml.AMLAnalysisResult, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[result.EntityID] = memoryEntry{
		result:    result,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}
