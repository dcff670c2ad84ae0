package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	returnsapp "github.com/retailpos/backend/internal/application/returns"
)

// InMemoryReturnCache is a process-local ReturnCache with per-entry expiry.
// Suitable for single-instance deployments and testing; entries are not
// shared across processes.
type InMemoryReturnCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]inMemoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type inMemoryEntry struct {
	response  *returnsapp.ReturnResponse
	expiresAt time.Time
}

// NewInMemoryReturnCache creates an in-memory return cache
func NewInMemoryReturnCache(ttl time.Duration) *InMemoryReturnCache {
	return &InMemoryReturnCache{
		entries: make(map[uuid.UUID]inMemoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached response and true on a hit
func (c *InMemoryReturnCache) Get(_ context.Context, returnID uuid.UUID) (*returnsapp.ReturnResponse, bool) {
	c.mu.RLock()
	entry, ok := c.entries[returnID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, returnID)
		c.mu.Unlock()
		return nil, false
	}
	return entry.response, true
}

// Set stores the response
func (c *InMemoryReturnCache) Set(_ context.Context, response *returnsapp.ReturnResponse) {
	if response == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[response.ID] = inMemoryEntry{
		response:  response,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Invalidate drops the cached entry after a state change
func (c *InMemoryReturnCache) Invalidate(_ context.Context, returnID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, returnID)
}

// Len returns the number of live entries (for testing/monitoring)
func (c *InMemoryReturnCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryReturnCache implements ReturnCache
var _ returnsapp.ReturnCache = (*InMemoryReturnCache)(nil)
