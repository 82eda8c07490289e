package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/mj1618/docbind/internal/command"
)

// cacheEntry holds a cached response with its timestamp.
type cacheEntry struct {
	resp      command.Response
	timestamp time.Time
}

// ResponseCache is a TTL cache for read-only command responses. Any write
// command or selection change must invalidate it.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewResponseCache creates a new cache. A ttl of 0 disables caching.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// cacheKey identifies a request. Requests whose data cannot be encoded are
// not cacheable.
func cacheKey(req command.Request) (string, bool) {
	b, err := json.Marshal(req.Data)
	if err != nil {
		return "", false
	}
	return req.Command + "\x00" + string(b), true
}

// Do returns a fresh cached response for read-only requests, otherwise runs
// fn. Successful read-only responses are stored; anything else clears the
// cache.
func (c *ResponseCache) Do(req command.Request, fn func() command.Response) command.Response {
	if c.ttl <= 0 {
		return fn()
	}
	if !command.ReadOnly(req.Command) {
		resp := fn()
		c.InvalidateAll()
		return resp
	}
	key, ok := cacheKey(req)
	if !ok {
		return fn()
	}

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.timestamp) < c.ttl {
		c.mu.Unlock()
		return entry.resp
	}
	c.mu.Unlock()

	resp := fn()
	if resp.OK {
		c.mu.Lock()
		c.entries[key] = cacheEntry{resp: resp, timestamp: c.now()}
		c.mu.Unlock()
	}
	return resp
}

// Len reports the number of cached responses.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// InvalidateAll clears the entire cache.
func (c *ResponseCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
