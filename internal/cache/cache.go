// Package cache provides a generic TTL-windowed key-value cache with
// in-memory and Redis-backed implementations. The cache never fetches on a
// miss; read-through population is the caller's job, keeping the cache free
// of any knowledge of the upstream client.
package cache

import "context"

// Store is a TTL cache over values of type T. Read reports a miss for both
// absent and expired entries; callers treat the two identically. Write
// unconditionally replaces any prior entry and stamps it with the current
// time. Backend failures degrade to misses rather than surfacing errors.
type Store[T any] interface {
	Read(ctx context.Context, key string) (T, bool)
	Write(ctx context.Context, key string, value T)
}
