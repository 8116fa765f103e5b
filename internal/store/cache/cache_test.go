package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interactive-sessions/internal/common/database"
	"interactive-sessions/internal/common/logger"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ResultsCache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: server.Addr()})}
	return New(client, ttl, logger.NewNoOpLogger()), server
}

func TestResultsCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	results := map[string]any{
		"type":            "poll_results",
		"total_responses": float64(3),
	}

	_, hit := cache.Get(ctx, "activity-1")
	assert.False(t, hit)

	cache.Set(ctx, "activity-1", results)

	got, hit := cache.Get(ctx, "activity-1")
	require.True(t, hit)
	assert.Equal(t, results, got)
}

func TestResultsCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "activity-1", map[string]any{"type": "poll_results"})
	require.NoError(t, cache.Invalidate(ctx, "activity-1"))

	_, hit := cache.Get(ctx, "activity-1")
	assert.False(t, hit)
}

func TestResultsCacheTTL(t *testing.T) {
	cache, server := newTestCache(t, time.Second)
	ctx := context.Background()

	cache.Set(ctx, "activity-1", map[string]any{"type": "poll_results"})
	server.FastForward(2 * time.Second)

	_, hit := cache.Get(ctx, "activity-1")
	assert.False(t, hit)
}

func TestResultsCacheCorruptEntry(t *testing.T) {
	cache, server := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, server.Set("results:activity-1", "{not json"))

	_, hit := cache.Get(ctx, "activity-1")
	assert.False(t, hit)
}
