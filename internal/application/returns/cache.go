package returns

import (
	"context"

	"github.com/google/uuid"
)

// ReturnCache caches return read models keyed by return ID. Implementations
// must tolerate being unavailable: a miss or a failed write degrades to a
// repository read, never to an error surfaced to the caller.
type ReturnCache interface {
	// Get returns the cached response and true on a hit
	Get(ctx context.Context, returnID uuid.UUID) (*ReturnResponse, bool)
	// Set stores the response
	Set(ctx context.Context, response *ReturnResponse)
	// Invalidate drops the cached entry after a state change
	Invalidate(ctx context.Context, returnID uuid.UUID)
}

// NoOpReturnCache is a ReturnCache that caches nothing
type NoOpReturnCache struct{}

// NewNoOpReturnCache creates a NoOpReturnCache
func NewNoOpReturnCache() *NoOpReturnCache {
	return &NoOpReturnCache{}
}

// Get always misses
func (c *NoOpReturnCache) Get(_ context.Context, _ uuid.UUID) (*ReturnResponse, bool) {
	return nil, false
}

// Set does nothing
func (c *NoOpReturnCache) Set(_ context.Context, _ *ReturnResponse) {}

// Invalidate does nothing
func (c *NoOpReturnCache) Invalidate(_ context.Context, _ uuid.UUID) {}

var _ ReturnCache = (*NoOpReturnCache)(nil)
