// Package cache provides a small best-effort JSON cache over redis.
// This is part of the platform layer and contains no business logic.
// A nil *Cache is valid and behaves as a permanent miss, so callers can
// wire caching in only when redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON-encoded values with a TTL. All operations are
// best-effort: redis failures surface as misses, never as errors.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a cache backed by the given redis client.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// NewClient dials redis with the standard options used by the application.
func NewClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

// Get unmarshals the cached value for key into dest.
// Returns false on miss, expiry, redis failure, or decode failure.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// Set stores the value under key with the cache TTL. Failures are ignored.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, data, c.ttl)
}

// DeletePrefix removes all keys with the given prefix. Failures are ignored.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
}
