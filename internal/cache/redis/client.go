// Package redis backs the scanner's fast-path state with go-redis/v9: the
// seen cache that short-circuits dedup lookups, the per-user scan locks, and
// the marketplace rate limiter all share one connection pool.
package redis

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ClientConfig holds connection parameters for the shared Redis client.
type ClientConfig struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	MaxRetries int
	TLSEnabled bool
}

// Client owns the go-redis connection pool shared by the seen cache, lock
// manager, and rate limiter in this package.
type Client struct {
	rdb *redis.Client
}

// New connects to Redis and verifies connectivity with a ping. The scanner
// treats an unreachable Redis as fatal at startup: without it neither scan
// locking nor rate limiting can be enforced.
func New(ctx context.Context, cfg ClientConfig) (*Client, error) {
	opts := &redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		PoolSize:   cfg.PoolSize,
		MaxRetries: cfg.MaxRetries,
	}

	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	rdb := redis.NewClient(opts)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}

	return &Client{rdb: rdb}, nil
}

// Ping checks the Redis connection.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Underlying exposes the raw *redis.Client to the cache, lock, and limiter
// types in this package.
func (c *Client) Underlying() *redis.Client {
	return c.rdb
}
