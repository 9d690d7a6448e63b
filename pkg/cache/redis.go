package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a Redis-backed cache.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RedisCache stores entries in Redis, relying on Redis key expiry for TTLs.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection with PING,
// retrying with backoff while the server comes up.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(client.Ping(ctx).Err())
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis %s: %v", ErrUnavailable, cfg.Addr, err)
	}
	return &RedisCache{client: client}, nil
}

// NewRedisCacheFromClient wraps an existing client without pinging it.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value in Redis. A zero ttl keeps the key until evicted.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes a key from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// scanBatch is the COUNT hint passed to SCAN.
const scanBatch = 256

// Clear deletes every routine and formation entry under prefix, leaving
// other keys in the database alone. It returns the number of keys removed.
func (c *RedisCache) Clear(ctx context.Context, prefix string) (int, error) {
	removed := 0
	for _, keyType := range []string{KeyTypeRoutine, KeyTypeFormation} {
		iter := c.client.Scan(ctx, 0, prefix+keyType+":*", scanBatch).Iterator()
		var batch []string
		for iter.Next(ctx) {
			batch = append(batch, iter.Val())
			if len(batch) == scanBatch {
				n, err := c.client.Del(ctx, batch...).Result()
				if err != nil {
					return removed, err
				}
				removed += int(n)
				batch = batch[:0]
			}
		}
		if err := iter.Err(); err != nil {
			return removed, err
		}
		if len(batch) > 0 {
			n, err := c.client.Del(ctx, batch...).Result()
			if err != nil {
				return removed, err
			}
			removed += int(n)
		}
	}
	return removed, nil
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
