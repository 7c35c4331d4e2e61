package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryNameCache implements NameCache with process-local storage.
// Used when Redis is disabled, and in tests.
type InMemoryNameCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]nameEntry
}

type nameEntry struct {
	name      string
	expiresAt time.Time
}

// NewInMemoryNameCache creates an empty in-memory cache
func NewInMemoryNameCache() *InMemoryNameCache {
	return &InMemoryNameCache{entries: make(map[uuid.UUID]nameEntry)}
}

// Get retrieves a cached product name
func (c *InMemoryNameCache) Get(_ context.Context, productID uuid.UUID) (string, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[productID]
	c.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, productID)
		c.mu.Unlock()
		return "", false, nil
	}
	return entry.name, true, nil
}

// Set stores a product name with the given TTL
func (c *InMemoryNameCache) Set(_ context.Context, productID uuid.UUID, name string, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[productID] = nameEntry{name: name, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Close is a no-op for the in-memory cache
func (c *InMemoryNameCache) Close() error {
	return nil
}

var _ NameCache = (*InMemoryNameCache)(nil)
