// Package cache memoizes full analysis results per entity under a short TTL
// so retries and webhook replays do not recompute the fan-out. A later
// analysis supersedes the cached result; results are never merged.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cardwatch/amlengine/internal/aml"
)

// ErrCacheMiss is returned when no unexpired result exists for the entity.
var ErrCacheMiss = errors.New("analysis cache miss")

// AnalysisCache stores one AMLAnalysisResult per entity.
type AnalysisCache interface {
	Get(ctx context.Context, entityID string) (*aml.AMLAnalysisResult, error)
	Set(ctx context.Context, result *aml.AMLAnalysisResult, ttl time.Duration) error
}

// RedisCache stores results as JSON values with a server-side TTL.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates an analysis cache on the given Redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func cacheKey(entityID string) string {
	return fmt.Sprintf("aml:analysis:%s", entityID)
}

func (c *RedisCache) Get(ctx context.Context, entityID string) (*aml.AMLAnalysisResult, error) {
	data, err := c.client.Get(ctx, cacheKey(entityID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get for %s: %w", entityID, err)
	}

	var result aml.AMLAnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("cache decode for %s: %w", entityID, err)
	}
	return &result, nil
}

func (c *RedisCache) Set(ctx context.Context, result *aml.AMLAnalysisResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache encode for %s: %w", result.EntityID, err)
	}
	if err := c.client.Set(ctx, cacheKey(result.EntityID), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set for %s: %w", result.EntityID, err)
	}
	return nil
}
