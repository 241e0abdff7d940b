package rapidapi

import (
	"sync"
	"time"
)

type photoEntry struct {
	urls      []string
	expiresAt time.Time
}

type photoCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]photoEntry
	now     func() time.Time
}

func newPhotoCache(ttl time.Duration) *photoCache {
	return &photoCache{ttl: ttl, entries: make(map[string]photoEntry), now: time.Now}
}

func (c *photoCache) get(hotelID string) ([]string, bool) {
	c.mu.RLock()
	e, ok := c.entries[hotelID]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.urls, true
}

func (c *photoCache) put(hotelID string, urls []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	// Drop expired lists while holding the lock anyway.
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
		}
	}
	c.entries[hotelID] = photoEntry{urls: urls, expiresAt: now.Add(c.ttl)}
}
