package wallet

import "sync"

// Cache is the in-process credential cache: user id to decrypted entry. It is
// the fastest lookup path, not a security boundary; it only exists inside the
// trusted process and is rebuilt from durable state on restart. Entries are
// populated exclusively from durably committed credentials.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewCache builds an empty credential cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Get returns the cached entry for the user, if present.
func (c *Cache) Get(userID string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[userID]
	return entry, ok
}

// Put stores the entry for the user, replacing any previous one.
func (c *Cache) Put(userID string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = entry
}

// Invalidate drops the user's entry. Call when durable state changed
// out-of-band, e.g. an explicit re-import.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}
