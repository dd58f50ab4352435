// Package cache provides the Redis session cache and rate limiter.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyNamespace prefixes every key the API writes, so a shared Redis
// database can be inspected or flushed per application.
const keyNamespace = "todoapi:"

// Cache provides Redis cache access methods.
type Cache struct {
	client *redis.Client
}

// New parses redisURL, applies the API's pool settings and verifies the
// connection with a PING.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	applyPoolDefaults(opt)

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// applyPoolDefaults sizes the pool for short session lookups. Values given
// explicitly in the URL query are kept.
func applyPoolDefaults(opt *redis.Options) {
	if opt.ClientName == "" {
		opt.ClientName = "todoapi"
	}
	if opt.PoolSize == 0 {
		opt.PoolSize = 10
	}
	if opt.MinIdleConns == 0 {
		opt.MinIdleConns = 2
	}
	if opt.PoolTimeout == 0 {
		opt.PoolTimeout = 4 * time.Second
	}
	if opt.ConnMaxIdleTime == 0 {
		opt.ConnMaxIdleTime = 5 * time.Minute
	}
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client for test setup.
func (c *Cache) Client() *redis.Client {
	return c.client
}
