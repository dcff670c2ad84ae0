package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SerialUnitRepository persists serialized units
type SerialUnitRepository interface {
	// FindByProductAndSerial loads a unit by its natural key; returns
	// shared.ErrNotFound when the serial is unknown for the product.
	FindByProductAndSerial(ctx context.Context, productID uuid.UUID, serialNumber string) (*SerialUnit, error)
	// Save persists the unit's current state.
	Save(ctx context.Context, unit *SerialUnit) error
	// UpdateStatusGuarded writes the new status only when the persisted
	// status still matches expected. Returns false when the guard misses,
	// which callers treat as a tolerated skip.
	UpdateStatusGuarded(ctx context.Context, unitID uuid.UUID, expected, next SerialStatus) (bool, error)
}

// StockMovementRepository appends journal rows. The journal is append-only;
// there is deliberately no update or delete.
type StockMovementRepository interface {
	Append(ctx context.Context, movement *StockMovement) error
	// FindByReference lists the movements recorded for an originating
	// document (return number), oldest first.
	FindByReference(ctx context.Context, reference string) ([]StockMovement, error)
}

// StockLevelRepository maintains the aggregate on-hand counters
type StockLevelRepository interface {
	FindByProduct(ctx context.Context, productID uuid.UUID) (*StockLevel, error)
	// Increment atomically adds delta to the product's counter, creating
	// the row with delta when it does not exist yet.
	Increment(ctx context.Context, productID uuid.UUID, delta decimal.Decimal) error
}
