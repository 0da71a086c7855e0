// Package cache wraps redis for response caching and cross-process locks.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/0-0Dibakar/AI-Powered-News/config"
)

// Cache is a thin redis wrapper. A nil *Cache is usable and behaves as a
// cache that never hits, so callers can run without redis configured.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to redis and verifies the connection with a ping.
func New(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{rdb: client, ttl: ttl}, nil
}

// Get returns the cached value and whether the key existed.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

// Set stores value under key with the cache's default TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	if c == nil {
		return nil
	}
	return c.rdb.Set(ctx, key, value, c.ttl).Err()
}

// Delete removes a key. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(ctx, key).Err()
}

// Lock takes a best-effort distributed lock. It returns true when this
// process won the lock; the lock expires on its own after ttl so a crashed
// holder cannot wedge the schedule.
func (c *Cache) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if c == nil {
		// Without redis a single process is its own arbiter.
		return true, nil
	}
	return c.rdb.SetNX(ctx, key, "1", ttl).Result()
}

// Unlock releases a lock taken with Lock.
func (c *Cache) Unlock(ctx context.Context, key string) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(ctx, key).Err()
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
