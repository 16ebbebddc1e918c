// Package cache is a read-through Redis cache in front of the resolution
// pipeline. Resolution is expensive in the worst case (full remote window
// scans), and records are immutable once resolved, so a short TTL cache is
// safe. Every cache failure degrades to a miss; the cache can never make
// resolution fail.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"bidlens.app/resolver/internal/model"
)

const keyPrefix = "resolver:match:"

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached result for an identifier, or (nil, false) on any
// miss or cache failure.
func (c *Cache) Get(ctx context.Context, identifier string) (*model.MatchResult, bool) {
	raw, err := c.client.Get(ctx, key(identifier)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.DebugContext(ctx, "cache get failed", "error", err)
		}
		return nil, false
	}

	var result model.MatchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		slog.WarnContext(ctx, "cache entry corrupt, ignoring", "error", err)
		return nil, false
	}
	return &result, true
}

// Set stores a resolution result under the identifier. Failures are logged
// and swallowed.
func (c *Cache) Set(ctx context.Context, identifier string, result *model.MatchResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		slog.WarnContext(ctx, "cache marshal failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, key(identifier), raw, c.ttl).Err(); err != nil {
		slog.DebugContext(ctx, "cache set failed", "error", err)
	}
}

// key preserves case: identifier matching is byte-sensitive in the exact
// tiers, so case-distinct inputs must not share an entry.
func key(identifier string) string {
	return keyPrefix + strings.TrimSpace(identifier)
}
