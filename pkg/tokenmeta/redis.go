package tokenmeta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps a redis client as a metadata cache.
func NewRedisCache(client *redis.Client, ttl time.Duration) *redisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, tokenAddress, network string) (*Info, error) {
	data, err := c.client.Get(ctx, cacheKey(tokenAddress, network)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token metadata from redis: %w", err)
	}

	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		// A corrupt entry is treated as a miss so the caller refreshes it.
		return nil, nil
	}
	return &info, nil
}

func (c *redisCache) Set(ctx context.Context, tokenAddress, network string, info *Info) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode token metadata: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(tokenAddress, network), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write token metadata to redis: %w", err)
	}
	return nil
}
