package data

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// CacheEntry represents a cached response.
type CacheEntry[T any] struct {
	Response  T
	ExpiresAt time.Time
}

// ResponseCache is an in-memory TTL cache for computed responses.
// A nil *ResponseCache is valid and never hits.
type ResponseCache[T any] struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry[T]
	ttl   time.Duration
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewResponseCache returns a cache, or nil when caching is disabled.
// Expired entries are swept every sweep interval; 0 disables sweeping.
func NewResponseCache[T any](enabled bool, ttl, sweep time.Duration) *ResponseCache[T] {
	if !enabled || ttl <= 0 {
		return nil
	}
	c := &ResponseCache[T]{
		store: make(map[string]*CacheEntry[T]),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if sweep > 0 {
		go c.cleanup(sweep)
	}
	return c
}

// Get retrieves a cached response if available and not expired.
func (c *ResponseCache[T]) Get(key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[key]
	if !exists || c.now().After(entry.ExpiresAt) {
		return zero, false
	}
	return entry.Response, true
}

// Set stores a response in the cache.
func (c *ResponseCache[T]) Set(key string, response T) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = &CacheEntry[T]{
		Response:  response,
		ExpiresAt: c.now().Add(c.ttl),
	}
}

func (c *ResponseCache[T]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Clear removes all entries from the cache.
func (c *ResponseCache[T]) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*CacheEntry[T])
}

// Close stops the sweeper.
func (c *ResponseCache[T]) Close() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *ResponseCache[T]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.store {
		if now.After(entry.ExpiresAt) {
			delete(c.store, key)
		}
	}
}

// cleanup periodically removes expired entries.
func (c *ResponseCache[T]) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stop:
			return
		}
	}
}

// GenerateCacheKey hashes the JSON encoding of a normalized request.
func GenerateCacheKey(kind string, req any) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write(raw)
	return hex.EncodeToString(h.Sum(nil)), nil
}
