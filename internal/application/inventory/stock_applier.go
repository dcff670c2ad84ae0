package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockApplier is the single mutation point for the bulk stock counters.
// Every counter change goes through ApplyRestock so the increment and its
// journal row are always written together.
type StockApplier struct {
	logger *zap.Logger
}

// NewStockApplier creates a new StockApplier
func NewStockApplier(logger *zap.Logger) *StockApplier {
	return &StockApplier{logger: logger}
}

// ApplyRestock increments the product's on-hand counter by quantity and
// appends a RESTOCK_RETURN journal row referencing the originating return.
func (a *StockApplier) ApplyRestock(
	ctx context.Context,
	repos TransactionalRepositories,
	productID uuid.UUID,
	quantity decimal.Decimal,
	reference, reason string,
) error {
	movement, err := inventory.NewStockMovement(productID, inventory.MovementTypeRestockReturn, quantity, reference, reason)
	if err != nil {
		return err
	}

	if err := repos.StockLevelRepo().Increment(ctx, productID, quantity); err != nil {
		return err
	}
	if err := repos.StockMovementRepo().Append(ctx, movement); err != nil {
		return err
	}

	a.logger.Debug("stock restored",
		zap.String("product_id", productID.String()),
		zap.String("quantity", quantity.String()),
		zap.String("reference", reference),
	)
	return nil
}
