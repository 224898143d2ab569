package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tse-screener/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(Disabled(), "test")

	allowed, remaining, err := limiter.Allow(context.Background(), YahooRateLimit)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, YahooRateLimit.Limit, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), JPXRateLimit))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Set(ctx, "key", "value", TTLSnapshot))
}

func TestCache_GetOrSetDisabledCallsFn(t *testing.T) {
	cache := NewCache(Disabled(), "test")

	calls := 0
	var got []int
	err := cache.GetOrSet(context.Background(), "k", &got, TTLSnapshot, func() (interface{}, error) {
		calls++
		return []int{1, 2, 3}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []int{1, 2, 3}, got)

	boom := errors.New("boom")
	err = cache.GetOrSet(context.Background(), "k", &got, TTLSnapshot, func() (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "snapshot:rows:tse_daily_2026-10-15.csv:100", SnapshotRowsKey("tse_daily_2026-10-15.csv", 100))
	assert.Equal(t, "snapshot:sectors:f.csv:1:all", SectorSummaryKey("f.csv", 1, ""))
	assert.Equal(t, "snapshot:sectors:f.csv:1:Prime", SectorSummaryKey("f.csv", 1, "Prime"))
}
