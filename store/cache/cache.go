// Package cache provides a small in-process TTL cache used to front hot
// store lookups.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Config controls cache behavior.
type Config struct {
	// DefaultTTL is how long entries live. Zero disables expiry.
	DefaultTTL time.Duration
	// CleanupInterval is how often expired entries are swept. Zero disables
	// the background sweeper; expired entries are then dropped lazily on Get.
	CleanupInterval time.Duration
	// MaxItems caps the cache size; the least recently used entry is evicted
	// past the cap. Zero means unbounded.
	MaxItems int
	// OnEviction, when set, is called with each evicted or expired entry.
	OnEviction func(key string, value any)
}

type item struct {
	key       string
	value     any
	expiresAt time.Time
	elem      *list.Element
}

// Cache is a thread-safe in-memory TTL cache with LRU eviction.
type Cache struct {
	mu     sync.Mutex
	config Config
	items  map[string]*item
	lru    *list.List // front = most recently used
	done   chan struct{}
	closed bool
}

// New creates a cache and, when configured, starts its cleanup goroutine.
func New(config Config) *Cache {
	c := &Cache{
		config: config,
		items:  make(map[string]*item),
		lru:    list.New(),
		done:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go c.cleanupLoop()
	}
	return c
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.expired(it, time.Now()) {
		c.remove(it)
		return nil, false
	}
	c.lru.MoveToFront(it.elem)
	return it.value, true
}

// Set stores a value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.config.DefaultTTL)
}

// SetWithTTL stores a value with an explicit TTL. Zero means no expiry.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if existing, ok := c.items[key]; ok {
		existing.value = value
		existing.expiresAt = expiresAt
		c.lru.MoveToFront(existing.elem)
		return
	}

	it := &item{key: key, value: value, expiresAt: expiresAt}
	it.elem = c.lru.PushFront(it)
	c.items[key] = it

	if c.config.MaxItems > 0 && len(c.items) > c.config.MaxItems {
		if oldest := c.lru.Back(); oldest != nil {
			c.remove(oldest.Value.(*item))
		}
	}
}

// Delete removes an entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if it, ok := c.items[key]; ok {
		c.remove(it)
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Close stops the cleanup goroutine. The cache remains usable but no longer
// sweeps expired entries in the background.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for _, it := range c.items {
				if c.expired(it, now) {
					c.remove(it)
				}
			}
			c.mu.Unlock()
		}
	}
}

// expired and remove must be called with mu held.
func (c *Cache) expired(it *item, now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

func (c *Cache) remove(it *item) {
	delete(c.items, it.key)
	c.lru.Remove(it.elem)
	if c.config.OnEviction != nil {
		c.config.OnEviction(it.key, it.value)
	}
}
