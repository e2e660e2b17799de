package window

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cardwatch/amlengine/internal/aml"
)

// MemoryStore is an in-process Store for tests and single-node deployments.
// TTL expiry applies to the whole key, matching the Redis semantics.
type MemoryStore struct {
	mu      sync.RWMutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

type memoryWindow struct {
	entries   []aml.WindowEntry
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory window store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

func (s *MemoryStore) Append(_ context.Context, key string, entry aml.WindowEntry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || s.now().After(w.expiresAt) {
		w = &memoryWindow{}
		s.windows[key] = w
	}
	w.entries = append(w.entries, entry)
	w.expiresAt = s.now().Add(ttl)
	return nil
}

func (s *MemoryStore) RangeSince(_ context.Context, key string, sinceMillis int64) ([]aml.WindowEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.windows[key]
	if !ok || s.now().After(w.expiresAt) {
		return nil, nil
	}

	var out []aml.WindowEntry
	for _, e := range w.entries {
		if e.TimestampMillis >= sinceMillis {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TimestampMillis < out[j].TimestampMillis
	})
	return out, nil
}
