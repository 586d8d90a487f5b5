package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const (
	defaultL1TTL      = 15 * time.Minute
	l1CleanupInterval = 10 * time.Minute
)

// Client is a two-tier cache: an in-process L1 in front of an optional Redis
// L2. It fails safe: Redis errors behave like cache misses and are never
// returned to callers.
type Client struct {
	l1     *gocache.Cache
	client *redis.Client
}

// New creates a cache. An empty addr disables the Redis tier.
func New(addr, password string, db int) *Client {
	c := &Client{l1: gocache.New(defaultL1TTL, l1CleanupInterval)}
	if addr == "" {
		return c
	}
	c.client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return c
}

// Ping reports whether the Redis tier is reachable. Without Redis it is a no-op.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	if v, ok := c.l1.Get(key); ok {
		return v.([]byte), nil
	}
	if c.client == nil {
		return nil, nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		slog.Debug("cache: redis get failed", slog.String("key", key), slog.Any("error", err))
		return nil, nil
	}
	// populate L1 for the remaining lifetime of the redis key when known
	ttl := gocache.DefaultExpiration
	if d, err := c.client.TTL(ctx, key).Result(); err == nil && d > 0 {
		ttl = d
	}
	c.l1.Set(key, res, ttl)
	return res, nil
}

// Set stores value with TTL, ignoring redis errors.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	c.l1.Set(key, value, ttl)
	if c.client == nil {
		return nil
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Debug("cache: redis set failed", slog.String("key", key), slog.Any("error", err))
	}
	return nil
}

// Delete removes a key, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil {
		return nil
	}
	c.l1.Delete(key)
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		slog.Debug("cache: redis delete failed", slog.String("key", key), slog.Any("error", err))
	}
	return nil
}

// Close releases the Redis connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
