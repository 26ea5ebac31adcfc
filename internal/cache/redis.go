package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

// Redis is a TTL cache backed by a Redis instance, so cached Discord metadata
// survives restarts and is shared across replicas. Entries carry their own
// cachedAt stamp and are validated against the local clock; the server-side
// expiry is only a backstop that keeps dead keys from accumulating.
//
// Redis failures (including an open circuit breaker on the client) are
// reported as misses: the caller refetches from Discord instead of failing
// the request.
type Redis[T any] struct {
	rdb    goredis.Cmdable
	prefix string
	ttl    time.Duration
	clock  clockwork.Clock
}

type redisEntry[T any] struct {
	Data     T         `json:"data"`
	CachedAt time.Time `json:"cachedAt"`
}

func NewRedis[T any](rdb goredis.Cmdable, prefix string, ttl time.Duration, clock clockwork.Clock) *Redis[T] {
	return &Redis[T]{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		clock:  clock,
	}
}

func (c *Redis[T]) Read(ctx context.Context, key string) (T, bool) {
	var zero T

	data, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.Warn("Redis cache GET failed", "cache", c.prefix, "key", key, "error", err)
		}
		return zero, false
	}

	var entry redisEntry[T]
	if err := json.Unmarshal(data, &entry); err != nil {
		slog.Warn("Failed to unmarshal cached entry", "cache", c.prefix, "key", key, "error", err)
		return zero, false
	}

	if c.clock.Now().Sub(entry.CachedAt) >= c.ttl {
		return zero, false
	}

	return entry.Data, true
}

func (c *Redis[T]) Write(ctx context.Context, key string, value T) {
	entry := redisEntry[T]{
		Data:     value,
		CachedAt: c.clock.Now(),
	}

	encoded, err := json.Marshal(entry)
	if err != nil {
		slog.Warn("Failed to marshal cache entry", "cache", c.prefix, "key", key, "error", err)
		return
	}

	// Server-side expiry at 2x TTL so a skewed Redis clock never evicts a
	// still-valid entry.
	if err := c.rdb.Set(ctx, c.key(key), encoded, 2*c.ttl).Err(); err != nil {
		slog.Warn("Failed to populate Redis cache", "cache", c.prefix, "key", key, "error", err)
	}
}

func (c *Redis[T]) key(key string) string {
	return c.prefix + ":" + key
}
