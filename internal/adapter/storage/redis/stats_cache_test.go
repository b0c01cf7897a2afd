package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewStatsCache(client)
	ctx := context.Background()

	value := []byte(`{"total_merchants":12,"total_transactions":340,"total_volume":"18250.5","total_commission":"182.51"}`)

	// Get before set => nil
	result, err := cache.Get(ctx)
	assert.NoError(t, err)
	assert.Nil(t, result)

	// Set
	err = cache.Set(ctx, value, 10*time.Second)
	require.NoError(t, err)

	// Get after set
	result, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, value, result)
}

func TestStatsCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewStatsCache(client)
	ctx := context.Background()

	err := cache.Set(ctx, []byte(`{"total_transactions":1}`), 10*time.Second)
	require.NoError(t, err)

	// Fast-forward time in miniredis
	s.FastForward(11 * time.Second)

	result, err := cache.Get(ctx)
	assert.NoError(t, err)
	assert.Nil(t, result, "expired stats should return nil")
}

func TestStatsCache_Invalidate(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewStatsCache(client)
	ctx := context.Background()

	err := cache.Set(ctx, []byte(`{"total_transactions":5}`), time.Minute)
	require.NoError(t, err)

	err = cache.Invalidate(ctx)
	require.NoError(t, err)

	result, err := cache.Get(ctx)
	assert.NoError(t, err)
	assert.Nil(t, result, "invalidated stats should return nil")
}

func TestStatsCache_InvalidateMissingKey(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewStatsCache(client)

	err := cache.Invalidate(context.Background())
	assert.NoError(t, err, "invalidating an empty cache is not an error")
}
