package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SerialLedger moves serialized units through the return lifecycle and
// journals every applied transition. Units in an unexpected state are skipped
// with a log line rather than failing the surrounding transaction: a unit
// already RETURNED is a tolerated duplicate submission, and an unknown serial
// is recorded for investigation without blocking the customer's return.
type SerialLedger struct {
	logger *zap.Logger
}

// NewSerialLedger creates a new SerialLedger
func NewSerialLedger(logger *zap.Logger) *SerialLedger {
	return &SerialLedger{logger: logger}
}

// MarkUnitsReturned transitions the given units from SOLD to RETURNED and
// appends one journal row per applied transition. Returns the number of
// units actually transitioned.
func (l *SerialLedger) MarkUnitsReturned(
	ctx context.Context,
	repos TransactionalRepositories,
	productID uuid.UUID,
	serialNumbers []string,
	reference string,
) (int, error) {
	return l.transition(ctx, repos, productID, serialNumbers, reference,
		inventory.SerialStatusSold, inventory.SerialStatusReturned, inventory.MovementTypeReturn)
}

// MarkUnitsRestocked transitions the given units from RETURNED to IN_STOCK
// and appends one journal row per applied transition. Returns the number of
// units actually transitioned.
func (l *SerialLedger) MarkUnitsRestocked(
	ctx context.Context,
	repos TransactionalRepositories,
	productID uuid.UUID,
	serialNumbers []string,
	reference string,
) (int, error) {
	return l.transition(ctx, repos, productID, serialNumbers, reference,
		inventory.SerialStatusReturned, inventory.SerialStatusInStock, inventory.MovementTypeRestockReturn)
}

func (l *SerialLedger) transition(
	ctx context.Context,
	repos TransactionalRepositories,
	productID uuid.UUID,
	serialNumbers []string,
	reference string,
	expected, next inventory.SerialStatus,
	movementType inventory.MovementType,
) (int, error) {
	applied := 0
	for _, sn := range serialNumbers {
		unit, err := repos.SerialUnitRepo().FindByProductAndSerial(ctx, productID, sn)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				l.logger.Warn("serial unit not found, skipping",
					zap.String("product_id", productID.String()),
					zap.String("serial_number", sn),
					zap.String("reference", reference),
				)
				continue
			}
			return applied, err
		}

		ok, err := repos.SerialUnitRepo().UpdateStatusGuarded(ctx, unit.ID, expected, next)
		if err != nil {
			return applied, err
		}
		if !ok {
			l.logger.Info("serial unit not in expected status, skipping",
				zap.String("serial_number", sn),
				zap.String("current_status", unit.Status.String()),
				zap.String("expected_status", expected.String()),
				zap.String("reference", reference),
			)
			continue
		}

		movement, err := inventory.NewStockMovement(productID, movementType, decimal.NewFromInt(1), reference, "")
		if err != nil {
			return applied, err
		}
		if err := repos.StockMovementRepo().Append(ctx, movement.WithSerialNumber(sn)); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}
