// Package cache combines per-request memoization with a short-lived,
// tag-invalidated in-process cache for page and navigation lookups.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Well-known tags. Services invalidate these after mutations.
const (
	TagPages    = "pages"
	TagHeader   = "header"
	TagFooter   = "footer"
	TagSettings = "settings"
	TagGallery  = "gallery"
)

// PageTag returns the tag for a single page slug.
func PageTag(slug string) string {
	return "page:" + slug
}

type entry struct {
	value   interface{}
	expires time.Time
	tags    []string
}

// Cache is safe for concurrent use. A nil *Cache disables caching.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	tags       map[string]map[string]struct{}
	generation uint64
	ttl        time.Duration
	now        func() time.Time
	group      singleflight.Group
}

// New creates a cache whose entries live for ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		tags:    make(map[string]map[string]struct{}),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock 替换时间来源，便于测试过期逻辑。
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// TTL reports the entry lifetime.
func (c *Cache) TTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.ttl
}

// Get returns a live value for key.
func (c *Cache) Get(key string) (interface{}, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		c.removeLocked(key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key and registers it with tags.
func (c *Cache) Set(key string, value interface{}, tags ...string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value, tags)
}

func (c *Cache) setLocked(key string, value interface{}, tags []string) {
	c.removeLocked(key)
	c.entries[key] = entry{value: value, expires: c.now().Add(c.ttl), tags: tags}
	for _, tag := range tags {
		keys, ok := c.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

func (c *Cache) removeLocked(key string) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	for _, tag := range e.tags {
		if keys, ok := c.tags[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.tags, tag)
			}
		}
	}
}

// Invalidate drops every entry registered under any of tags.
func (c *Cache) Invalidate(tags ...string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	for _, tag := range tags {
		for key := range c.tags[tag] {
			c.removeLocked(key)
		}
	}
}

// Purge empties the cache.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.entries = make(map[string]entry)
	c.tags = make(map[string]map[string]struct{})
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fetch returns the cached value for key or loads, stores and returns it.
// Concurrent loads of one key share a single call. A value whose load began
// before an invalidation is returned to its callers but not stored.
func Fetch[T any](c *Cache, key string, tags []string, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}
	if cached, ok := c.Get(key); ok {
		if value, ok := cached.(T); ok {
			return value, nil
		}
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.Lock()
		generation := c.generation
		c.mu.Unlock()

		value, err := load()
		if err != nil {
			return value, err
		}

		c.mu.Lock()
		if c.generation == generation {
			c.setLocked(key, value, tags)
		}
		c.mu.Unlock()
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	value, _ := result.(T)
	return value, nil
}
