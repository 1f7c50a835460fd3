// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryCache is an in-process LRU cache with per-entry expiry.
type MemoryCache struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List // front = most recently used
	defaultTTL time.Duration
	maxSize    int
	closed     bool
	stopCh     chan struct{}
	now        func() time.Time

	hits, misses, sets int64
}

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// MemoryOptions configures the memory cache.
type MemoryOptions struct {
	DefaultTTL      time.Duration
	MaxSize         int           // Maximum number of entries (0 = unlimited)
	CleanupInterval time.Duration // Interval for expired entry cleanup (0 = no cleanup)
}

// NewMemoryCache creates a new memory cache with the given options.
func NewMemoryCache(opts MemoryOptions) *MemoryCache {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = 5 * time.Minute
	}
	c := &MemoryCache{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		defaultTTL: opts.DefaultTTL,
		maxSize:    opts.MaxSize,
		stopCh:     make(chan struct{}),
		now:        time.Now,
	}
	if opts.CleanupInterval > 0 {
		go c.cleanupLoop(opts.CleanupInterval)
	}
	return c
}

// Get retrieves a copy of the value stored under key.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrCacheClosed
	}
	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, ErrCacheMiss
	}
	e := el.Value.(*memoryEntry)
	if !c.now().Before(e.expiresAt) {
		c.remove(el)
		c.misses++
		return nil, ErrCacheMiss
	}

	c.order.MoveToFront(el)
	c.hits++
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores a copy of value, evicting the least recently used entry when
// the cache is full.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCacheClosed
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	v := make([]byte, len(value))
	copy(v, value)
	expiresAt := c.now().Add(ttl)

	c.sets++
	if el, ok := c.items[key]; ok {
		e := el.Value.(*memoryEntry)
		e.value = v
		e.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return nil
	}

	if c.maxSize > 0 && len(c.items) >= c.maxSize {
		c.removeExpiredLocked()
		for len(c.items) >= c.maxSize {
			c.remove(c.order.Back())
		}
	}
	c.items[key] = c.order.PushFront(&memoryEntry{key: key, value: v, expiresAt: expiresAt})
	return nil
}

// Delete removes a key from the cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCacheClosed
	}
	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
	return nil
}

// DeleteByPrefix removes all keys starting with the given prefix.
func (c *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCacheClosed
	}
	for key, el := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.remove(el)
		}
	}
	return nil
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCacheClosed
	}
	c.items = make(map[string]*list.Element)
	c.order.Init()
	return nil
}

// Close stops the cleanup goroutine. Further calls return ErrCacheClosed.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.stopCh)
	}
	return nil
}

// Stats returns current cache statistics.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Sets: c.sets, Items: len(c.items)}
}

// remove unlinks el. Caller must hold c.mu.
func (c *MemoryCache) remove(el *list.Element) {
	if el == nil {
		return
	}
	e := c.order.Remove(el).(*memoryEntry)
	delete(c.items, e.key)
}

func (c *MemoryCache) removeExpiredLocked() {
	now := c.now()
	for _, el := range c.items {
		if !now.Before(el.Value.(*memoryEntry).expiresAt) {
			c.remove(el)
		}
	}
}

func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.removeExpiredLocked()
			c.mu.Unlock()
		case <-c.stopCh:
			return
		}
	}
}

var _ Cache = (*MemoryCache)(nil)
