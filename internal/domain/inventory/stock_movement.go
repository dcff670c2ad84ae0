package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementType classifies a stock movement journal row
type MovementType string

const (
	// MovementTypeReturn records a sold unit coming back from a customer
	MovementTypeReturn MovementType = "RETURN"
	// MovementTypeRestockReturn records a returned unit moving back into sellable stock
	MovementTypeRestockReturn MovementType = "RESTOCK_RETURN"
)

// IsValid returns true if the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeReturn, MovementTypeRestockReturn:
		return true
	}
	return false
}

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// StockMovement is an immutable journal row recording one inventory-affecting
// event. Rows are never updated or deleted; corrections append new rows. The
// journal is the audit trail, the StockLevel counter is the authoritative
// "current quantity".
type StockMovement struct {
	shared.BaseEntity
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_mv_product"`
	SerialNumber string          `gorm:"type:varchar(100);index"` // empty for bulk movements
	MovementType MovementType    `gorm:"type:varchar(30);not null;index"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"` // always positive
	Reference    string          `gorm:"type:varchar(100);index"`     // originating return number
	Reason       string          `gorm:"type:varchar(255)"`
	MovedAt      time.Time       `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a journal row
func NewStockMovement(
	productID uuid.UUID,
	movementType MovementType,
	quantity decimal.Decimal,
	reference, reason string,
) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	return &StockMovement{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		MovementType: movementType,
		Quantity:     quantity,
		Reference:    reference,
		Reason:       reason,
		MovedAt:      time.Now(),
	}, nil
}

// WithSerialNumber ties the movement to a single serialized unit
func (m *StockMovement) WithSerialNumber(serialNumber string) *StockMovement {
	m.SerialNumber = serialNumber
	return m
}
