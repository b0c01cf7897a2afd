package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const statsKey = "stats:global"

// StatsCache implements ports.StatsCache using Redis. It holds the admin
// dashboard's global stats JSON for a short TTL so repeated polls do not
// re-aggregate the whole ledger.
type StatsCache struct {
	client *goredis.Client
}

// NewStatsCache creates a new Redis-backed stats cache.
func NewStatsCache(client *goredis.Client) *StatsCache {
	return &StatsCache{client: client}
}

// Get retrieves the cached stats JSON. Returns nil, nil on a cache miss.
func (c *StatsCache) Get(ctx context.Context) ([]byte, error) {
	val, err := c.client.Get(ctx, statsKey).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis stats get: %w", err)
	}
	return val, nil
}

// Set stores the stats JSON with TTL.
func (c *StatsCache) Set(ctx context.Context, value []byte, ttl time.Duration) error {
	err := c.client.Set(ctx, statsKey, value, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis stats set: %w", err)
	}
	return nil
}

// Invalidate drops the cached stats so the next read recomputes. Called
// after ledger writes that change the totals.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	err := c.client.Del(ctx, statsKey).Err()
	if err != nil {
		return fmt.Errorf("redis stats del: %w", err)
	}
	return nil
}
