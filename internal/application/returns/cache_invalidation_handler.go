package returns

import (
	"context"

	"github.com/retailpos/backend/internal/domain/returns"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CacheInvalidationHandler drops the cached read model whenever a return
// changes state. The service invalidates after its own writes; this handler
// catches mutations from any other publisher on the bus.
type CacheInvalidationHandler struct {
	cache  ReturnCache
	logger *zap.Logger
}

// NewCacheInvalidationHandler creates a new CacheInvalidationHandler
func NewCacheInvalidationHandler(cache ReturnCache, logger *zap.Logger) *CacheInvalidationHandler {
	return &CacheInvalidationHandler{cache: cache, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CacheInvalidationHandler) EventTypes() []string {
	return []string{
		returns.EventTypeReturnApproved,
		returns.EventTypeReturnRejected,
		returns.EventTypeReturnCompleted,
		returns.EventTypeReturnCancelled,
	}
}

// Handle invalidates the cached entry for the affected return
func (h *CacheInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.cache.Invalidate(ctx, event.AggregateID())
	h.logger.Debug("invalidated cached return",
		zap.String("return_id", event.AggregateID().String()),
		zap.String("event_type", event.EventType()),
	)
	return nil
}

// Ensure CacheInvalidationHandler implements shared.EventHandler
var _ shared.EventHandler = (*CacheInvalidationHandler)(nil)
