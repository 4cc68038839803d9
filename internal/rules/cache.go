package rules

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a bounded LRU cache whose entries also expire after a fixed TTL.
// It is safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	order    *list.List // front = most recently used
	items    map[K]*list.Element
}

type cacheEntry[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
}

// NewCache creates a cache holding at most capacity entries for ttl each.
// A non-positive capacity or ttl disables that bound.
func NewCache[K comparable, V any](capacity int, ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		order:    list.New(),
		items:    make(map[K]*list.Element),
	}
}

// Get returns the live value for key and marks it most recently used.
// Expired entries are removed and reported as missing.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	entry := el.Value.(*cacheEntry[K, V])
	if c.ttl > 0 && !c.now().Before(entry.expires) {
		c.removeElement(el)
		return zero, false
	}
	c.order.MoveToFront(el)
	return entry.value, true
}

// Put stores value under key, evicting the least recently used entry when full
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*cacheEntry[K, V])
		entry.value = value
		entry.expires = expires
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&cacheEntry[K, V]{key: key, value: value, expires: expires})
	if c.capacity > 0 {
		for c.order.Len() > c.capacity {
			c.removeElement(c.order.Back())
		}
	}
}

// Clear drops every entry
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[K]*list.Element)
}

// Len returns the number of stored entries, including ones that have expired
// but not yet been touched.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Keys returns unexpired keys from most to least recently used
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	keys := make([]K, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		entry := el.Value.(*cacheEntry[K, V])
		if c.ttl > 0 && !now.Before(entry.expires) {
			continue
		}
		keys = append(keys, entry.key)
	}
	return keys
}

func (c *Cache[K, V]) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*cacheEntry[K, V]).key)
}
