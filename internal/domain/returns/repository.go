package returns

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StatusUpdate carries the fields written alongside a guarded status
// transition. Only non-nil members are persisted; the appended refund
// transactions are inserted in the same statement batch.
type StatusUpdate struct {
	Fields       map[string]any
	Transactions []RefundTransaction
}

// ReturnRepository persists Return aggregates.
//
// UpdateStatus is the concurrency guard for every state-changing operation:
// it must compare the persisted status against expected and write the new
// status in a single conditional statement. A mismatch surfaces as
// shared.ErrConcurrencyConflict so losing writers apply no side effects.
type ReturnRepository interface {
	// Create atomically inserts the return header, items, and serial rows.
	Create(ctx context.Context, r *Return) error
	// FindByID loads the full aggregate: items, serials, refund transactions.
	FindByID(ctx context.Context, id uuid.UUID) (*Return, error)
	// FindByReturnNumber loads the full aggregate by its return number.
	FindByReturnNumber(ctx context.Context, returnNumber string) (*Return, error)
	// FindAll lists returns with filtering, sorting, and pagination.
	FindAll(ctx context.Context, filter shared.Filter) ([]Return, error)
	// FindBySale lists returns raised against a sale, newest first.
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]Return, error)
	// Count counts returns matching the filter (pagination ignored).
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// CountByStatus counts returns in a given status.
	CountByStatus(ctx context.Context, status ReturnStatus) (int64, error)
	// UpdateStatus performs the compare-and-set status transition described
	// above, writing update.Fields and appending update.Transactions.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next ReturnStatus, update StatusUpdate) error
	// SumReturnedQuantityForSaleLine sums quantity_returned across all
	// non-rejected, non-cancelled returns touching the given sale line.
	SumReturnedQuantityForSaleLine(ctx context.Context, saleLineID uuid.UUID) (decimal.Decimal, error)
	// GenerateReturnNumber produces the next unique RT-YYYY-NNNNN number.
	GenerateReturnNumber(ctx context.Context) (string, error)
}
