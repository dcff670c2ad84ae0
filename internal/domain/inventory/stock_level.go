package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockLevel is the per-product aggregate on-hand counter for bulk
// (non-serialized) products. It is the single source of truth for current
// quantity; the movement journal is audit-only and is never summed to derive
// availability.
type StockLevel struct {
	shared.BaseEntity
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	OnHand    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates a stock counter for a product
func NewStockLevel(productID uuid.UUID, onHand decimal.Decimal) (*StockLevel, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if onHand.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "On-hand quantity cannot be negative")
	}
	return &StockLevel{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		OnHand:     onHand,
	}, nil
}

// Increase adds delta to the on-hand counter
func (s *StockLevel) Increase(delta decimal.Decimal) error {
	if delta.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Increase delta must be positive")
	}
	s.OnHand = s.OnHand.Add(delta)
	s.UpdatedAt = time.Now()
	return nil
}
