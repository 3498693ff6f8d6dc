package cache

import (
	"sync"
	"time"
)

// entry wraps a cached value with its bookkeeping.
type entry[V any] struct {
	value        V
	expiresAt    time.Time
	lastAccessed time.Time
}

// TTLCache is a thread-safe key-value cache with per-cache TTL expiry and
// LRU eviction at capacity. Writes on a miss race are idempotent: the last
// writer's value wins, which is acceptable for equivalent results.
//
// A zero ttl means entries never expire; a zero maxEntries means unlimited
// size. Expired entries are removed lazily on Get and periodically by a
// background janitor.
type TTLCache[V any] struct {
	// entries maps cache keys to stored values
	entries map[string]*entry[V]

	// ttl is the time-to-live for entries (0 = no expiry)
	ttl time.Duration

	// maxEntries caps the cache size (0 = unlimited)
	maxEntries int

	// mu protects concurrent access
	mu sync.RWMutex

	// stopCh signals the janitor goroutine to stop
	stopCh chan struct{}

	// sweepInterval is how often the janitor removes expired entries
	sweepInterval time.Duration
}

// New creates a TTL cache. The janitor sweep interval defaults to ttl/2,
// clamped to at least 10 seconds; it only runs when a TTL is configured.
func New[V any](ttl time.Duration, maxEntries int) *TTLCache[V] {
	sweep := time.Minute
	if ttl > 0 {
		sweep = ttl / 2
		if sweep < 10*time.Second {
			sweep = 10 * time.Second
		}
	}

	c := &TTLCache[V]{
		entries:       make(map[string]*entry[V]),
		ttl:           ttl,
		maxEntries:    maxEntries,
		stopCh:        make(chan struct{}),
		sweepInterval: sweep,
	}

	if ttl > 0 {
		go c.janitor()
	}

	return c
}

// Get retrieves a value. It returns the zero value and false when the key
// is absent or expired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.RUnlock()
		var zero V
		return zero, false
	}
	if c.ttl > 0 && time.Now().After(e.expiresAt) {
		c.mu.RUnlock()
		var zero V
		return zero, false
	}
	value := e.value
	c.mu.RUnlock()

	// Touch access time under the write lock; re-check existence since the
	// entry may have been evicted between locks.
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.lastAccessed = time.Now()
	}
	c.mu.Unlock()

	return value, true
}

// Set stores a value with the configured TTL, evicting the least recently
// accessed entry when the cache is full.
func (c *TTLCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[key]; !exists {
			c.evictLRU()
		}
	}

	now := time.Now()
	expiresAt := time.Time{}
	if c.ttl > 0 {
		expiresAt = now.Add(c.ttl)
	}

	c.entries[key] = &entry[V]{
		value:        value,
		expiresAt:    expiresAt,
		lastAccessed: now,
	}
}

// Delete removes an entry.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Size returns the current number of entries, including not-yet-swept
// expired ones.
func (c *TTLCache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[V])
}

// Close stops the janitor goroutine. The cache must not be used after
// Close.
func (c *TTLCache[V]) Close() {
	close(c.stopCh)
}

// evictLRU removes the least recently accessed entry.
// Must be called with the write lock held.
func (c *TTLCache[V]) evictLRU() {
	var oldestKey string
	var oldestTime time.Time

	for key, e := range c.entries {
		if oldestKey == "" || e.lastAccessed.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.lastAccessed
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// janitor periodically removes expired entries until Close is called.
func (c *TTLCache[V]) janitor() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

// removeExpired drops every expired entry.
func (c *TTLCache[V]) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
