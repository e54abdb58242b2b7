// Package cache holds the Redis-backed response cache for the list endpoint.
// A nil Redis client disables caching without changing call sites; every
// method is a no-op then, mirroring how the rest of the service degrades when
// Redis is not configured.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const allKey = "conversations:all"

// ListCache caches serialized list responses keyed by user filter.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// New creates a ListCache. client may be nil when Redis is unavailable.
func New(client *redis.Client, ttl time.Duration, log zerolog.Logger) *ListCache {
	return &ListCache{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "cache").Logger(),
	}
}

// Connect initializes the Redis client from addr, returning nil (caching
// disabled) when addr has no host or the server cannot be reached.
func Connect(ctx context.Context, addr, username, password string, log zerolog.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("failed to connect to Redis, continuing without response caching")
		return nil
	}
	log.Info().Str("addr", addr).Msg("connected to Redis")
	return client
}

func key(userID string) string {
	if userID == "" {
		return allKey
	}
	return fmt.Sprintf("conversations:user:%s", userID)
}

// Get returns the cached response body for the filter, or ok=false on a miss.
func (c *ListCache) Get(ctx context.Context, userID string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	body, err := c.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

// Set stores the response body for the filter.
func (c *ListCache) Set(ctx context.Context, userID string, body []byte) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key(userID), body, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("failed to cache list response")
	}
}

// Invalidate drops the cached entries a write for userID makes stale: the
// user's own entry and the unfiltered one.
func (c *ListCache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key(userID), allKey).Err(); err != nil {
		c.log.Warn().Err(err).Msg("failed to invalidate list cache")
	}
}
