package pipeline

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ttlCache is a simple thread-safe cache with per-entry expiry. Expired
// entries are evicted lazily on lookup; upstream TTLs are long enough that
// a background sweeper is not worth the moving parts.
type ttlCache[V any] struct {
	ttl   time.Duration
	clock clockwork.Clock

	mu      sync.Mutex
	entries map[string]cacheEntry[V]
}

type cacheEntry[V any] struct {
	value   V
	expires time.Time
}

func newTTLCache[V any](ttl time.Duration, clock clockwork.Clock) *ttlCache[V] {
	return &ttlCache[V]{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]cacheEntry[V]),
	}
}

func (c *ttlCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.clock.Now().After(e.expires) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *ttlCache[V]) put(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry[V]{value: v, expires: c.clock.Now().Add(c.ttl)}
}
