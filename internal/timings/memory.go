package timings

import (
	"sync"
	"time"
)

type memoryEntry struct {
	record    *MonthlyRecord
	expiresAt time.Time
}

// recordCache is the in-process tier: a mutex-guarded map of monthly
// records. Entries vanish on process restart; durability is the job of
// the local and remote stores.
type recordCache struct {
	mu              sync.RWMutex
	items           map[string]memoryEntry
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
	cleanupInterval time.Duration
}

func newRecordCache(cleanupInterval time.Duration) *recordCache {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}

	c := &recordCache{
		items:           make(map[string]memoryEntry),
		stopCleanup:     make(chan struct{}),
		cleanupInterval: cleanupInterval,
	}

	go c.cleanupExpired()

	return c
}

func (c *recordCache) get(key string, now time.Time) (*MonthlyRecord, bool) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if now.After(entry.expiresAt) {
		c.mu.Lock()
		if e, exists := c.items[key]; exists && now.After(e.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return entry.record, true
}

func (c *recordCache) put(key string, record *MonthlyRecord, ttl time.Duration) {
	if ttl <= 0 {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.items[key] = memoryEntry{
		record:    record,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

// cleanupExpired runs periodically to remove expired entries.
func (c *recordCache) cleanupExpired() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, v := range c.items {
				if now.After(v.expiresAt) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// close stops the cleanup goroutine. Call on shutdown or in tests.
func (c *recordCache) close() {
	c.cleanupOnce.Do(func() {
		close(c.stopCleanup)
	})
}

func (c *recordCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
