// Package cache keeps computed results documents in Redis so repeated result
// reads do not replay the full response history. Entries are invalidated
// whenever an activity's responses, configuration or state change, and expire
// on their own after the configured TTL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"interactive-sessions/internal/common/database"
	"interactive-sessions/internal/common/logger"
)

const keyPrefix = "results:"

// ResultsCache is a read-through cache for activity results documents.
type ResultsCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

func New(client *database.RedisClient, ttl time.Duration, log logger.Logger) *ResultsCache {
	return &ResultsCache{client: client.Client, ttl: ttl, log: log}
}

// Get returns the cached results for an activity, or (nil, false) on a miss.
// Redis failures are treated as misses; results can always be recomputed.
func (c *ResultsCache) Get(ctx context.Context, activityID string) (map[string]any, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+activityID).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.WithError(err).Warn("Results cache read failed", map[string]interface{}{
			"activity_id": activityID,
		})
		return nil, false
	}

	var results map[string]any
	if err := json.Unmarshal(raw, &results); err != nil {
		c.log.WithError(err).Warn("Results cache entry is corrupt", map[string]interface{}{
			"activity_id": activityID,
		})
		return nil, false
	}
	return results, true
}

// Set stores a results document. Failures are logged and swallowed.
func (c *ResultsCache) Set(ctx context.Context, activityID string, results map[string]any) {
	raw, err := json.Marshal(results)
	if err != nil {
		c.log.WithError(err).Warn("Failed to marshal results for caching", map[string]interface{}{
			"activity_id": activityID,
		})
		return
	}
	if err := c.client.Set(ctx, keyPrefix+activityID, raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("Results cache write failed", map[string]interface{}{
			"activity_id": activityID,
		})
	}
}

// Invalidate drops the cached results for an activity.
func (c *ResultsCache) Invalidate(ctx context.Context, activityID string) error {
	if err := c.client.Del(ctx, keyPrefix+activityID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate results cache: %w", err)
	}
	return nil
}
