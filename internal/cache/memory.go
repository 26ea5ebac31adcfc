package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Memory is an in-process TTL cache. Expired entries linger until the next
// Write for their key or an explicit EvictExpired sweep; this is a known
// resource-growth caveat accepted for the small key space (one entry per
// dashboard-visited server).
type Memory[T any] struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[T]
	ttl     time.Duration
	clock   clockwork.Clock
}

type memoryEntry[T any] struct {
	value    T
	cachedAt time.Time
}

func NewMemory[T any](ttl time.Duration, clock clockwork.Clock) *Memory[T] {
	return &Memory[T]{
		entries: make(map[string]memoryEntry[T]),
		ttl:     ttl,
		clock:   clock,
	}
}

func (c *Memory[T]) Read(_ context.Context, key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}

	// Expired entries are a miss. No delete here (read lock only);
	// eviction happens on overwrite or via EvictExpired.
	if c.clock.Now().Sub(entry.cachedAt) >= c.ttl {
		var zero T
		return zero, false
	}

	return entry.value, true
}

func (c *Memory[T]) Write(_ context.Context, key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry[T]{
		value:    value,
		cachedAt: c.clock.Now(),
	}
}

// Size returns the current number of entries, including expired ones.
func (c *Memory[T]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// EvictExpired removes all expired entries and returns the count evicted.
func (c *Memory[T]) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0

	for key, entry := range c.entries {
		if now.Sub(entry.cachedAt) >= c.ttl {
			delete(c.entries, key)
			evicted++
		}
	}

	return evicted
}

// StartEvictionTimer runs a background goroutine that periodically evicts
// expired entries. Returns a stop function that should be deferred.
func (c *Memory[T]) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				c.EvictExpired()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}
