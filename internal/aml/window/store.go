// Package window provides the sliding time-window store used by the AML
// pattern detectors. Each detector family keeps one independent window per
// entity; entries are append-only and expire with the key's TTL.
package window

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cardwatch/amlengine/internal/aml"
)

// Store is the time-window contract. Append inserts an entry ordered by its
// timestamp and refreshes the key's TTL; RangeSince returns all entries with
// timestamp >= sinceMillis in ascending order.
//
// Two concurrent append/range round trips for the same entity may interleave;
// callers tolerate a window read that does or does not include a concurrently
// appended entry (eventually consistent per-entity window, not linearizable).
type Store interface {
	Append(ctx context.Context, key string, entry aml.WindowEntry, ttl time.Duration) error
	RangeSince(ctx context.Context, key string, sinceMillis int64) ([]aml.WindowEntry, error)
}

// RedisStore implements Store on a Redis sorted set per window key, scored by
// entry timestamp in milliseconds. Individual entries are never deleted; stale
// entries outside any range query are ignored until the key's TTL expires them.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a window store on the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Append inserts the entry and resets the key expiry.
func (s *RedisStore) Append(ctx context.Context, key string, entry aml.WindowEntry, ttl time.Duration) error {
	member, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal window entry: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(entry.TimestampMillis),
		Member: string(member),
	})
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append to window %s: %w", key, err)
	}
	return nil
}

// RangeSince returns entries with timestamp >= sinceMillis, ascending.
func (s *RedisStore) RangeSince(ctx context.Context, key string, sinceMillis int64) ([]aml.WindowEntry, error) {
	members, err := s.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: fmt.Sprintf("%d", sinceMillis),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("range window %s: %w", key, err)
	}

	entries := make([]aml.WindowEntry, 0, len(members))
	for _, m := range members {
		var entry aml.WindowEntry
		if err := json.Unmarshal([]byte(m), &entry); err != nil {
			// Skip undecodable members rather than failing the whole read
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Key builds the window key for an (entity, detector-family) pair. Families
// never collide because the family name is part of the key.
func Key(family, entityID string) string {
	return fmt.Sprintf("aml:window:%s:%s", family, entityID)
}
