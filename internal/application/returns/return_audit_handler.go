package returns

import (
	"context"

	"github.com/retailpos/backend/internal/domain/returns"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReturnAuditHandler writes a structured audit line for every return
// lifecycle event. The log stream is the operational audit trail alongside
// the movement journal.
type ReturnAuditHandler struct {
	logger *zap.Logger
}

// NewReturnAuditHandler creates a new ReturnAuditHandler
func NewReturnAuditHandler(logger *zap.Logger) *ReturnAuditHandler {
	return &ReturnAuditHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ReturnAuditHandler) EventTypes() []string {
	return []string{
		returns.EventTypeReturnCreated,
		returns.EventTypeReturnApproved,
		returns.EventTypeReturnRejected,
		returns.EventTypeReturnCompleted,
		returns.EventTypeReturnCancelled,
	}
}

// Handle logs the event with its type-specific fields
func (h *ReturnAuditHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("return_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *returns.ReturnCreatedEvent:
		fields = append(fields,
			zap.String("return_number", e.ReturnNumber),
			zap.String("sale_id", e.SaleID.String()),
			zap.String("return_amount", e.ReturnAmount.String()),
			zap.Int("item_count", len(e.Items)),
		)
	case *returns.ReturnApprovedEvent:
		fields = append(fields,
			zap.String("return_number", e.ReturnNumber),
			zap.String("refund_amount", e.RefundAmount.String()),
			zap.String("store_credit_amount", e.StoreCreditAmount.String()),
		)
	case *returns.ReturnRejectedEvent:
		fields = append(fields,
			zap.String("return_number", e.ReturnNumber),
			zap.String("reason", e.Reason),
		)
	case *returns.ReturnCompletedEvent:
		fields = append(fields,
			zap.String("return_number", e.ReturnNumber),
			zap.Int("item_count", len(e.Items)),
		)
	case *returns.ReturnCancelledEvent:
		fields = append(fields,
			zap.String("return_number", e.ReturnNumber),
			zap.String("reason", e.Reason),
		)
	}

	h.logger.Info("return lifecycle event", fields...)
	return nil
}

// Ensure ReturnAuditHandler implements shared.EventHandler
var _ shared.EventHandler = (*ReturnAuditHandler)(nil)
