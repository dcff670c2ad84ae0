package returns

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemCondition represents the physical condition of a returned item
type ItemCondition string

const (
	ConditionNew       ItemCondition = "NEW"
	ConditionUsed      ItemCondition = "USED"
	ConditionDamaged   ItemCondition = "DAMAGED"
	ConditionDefective ItemCondition = "DEFECTIVE"
)

// IsValid checks if the condition is a valid ItemCondition
func (c ItemCondition) IsValid() bool {
	switch c {
	case ConditionNew, ConditionUsed, ConditionDamaged, ConditionDefective:
		return true
	}
	return false
}

// String returns the string representation of ItemCondition
func (c ItemCondition) String() string {
	return string(c)
}

// ReturnItemSerial associates a serialized unit with a return item.
// Modeled as a proper one-to-many relation so the completion step can
// re-enumerate exactly the units that were marked returned at creation.
type ReturnItemSerial struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReturnItemID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index"`
	SerialNumber string    `gorm:"type:varchar(100);not null;index"`
	CreatedAt    time.Time
}

// TableName returns the table name for GORM
func (ReturnItemSerial) TableName() string {
	return "return_item_serials"
}

// ReturnItem represents one original sale line being returned
type ReturnItem struct {
	ID               uuid.UUID          `gorm:"type:uuid;primaryKey"`
	ReturnID         uuid.UUID          `gorm:"type:uuid;not null;index"`
	SaleLineID       uuid.UUID          `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID          `gorm:"type:uuid;not null;index"`
	QuantityOriginal decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	QuantityReturned decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	UnitPrice        decimal.Decimal    `gorm:"type:decimal(18,4);not null"` // snapshotted from the sale line, never re-read
	LineAmount       decimal.Decimal    `gorm:"type:decimal(18,4);not null"` // QuantityReturned * UnitPrice
	Condition        ItemCondition      `gorm:"type:varchar(20);not null"`
	Restockable      bool               `gorm:"not null;default:false"`
	Reason           string             `gorm:"type:varchar(255)"`
	Serials          []ReturnItemSerial `gorm:"foreignKey:ReturnItemID"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName returns the table name for GORM
func (ReturnItem) TableName() string {
	return "return_items"
}

// NewReturnItem creates a return item against an original sale line.
// The unit price is snapshotted from the line; quantity is validated against
// the line quantity here, cumulative cross-return validation happens in the
// application layer where prior returns are visible.
func NewReturnItem(
	returnID uuid.UUID,
	line *sales.SaleLine,
	quantityReturned decimal.Decimal,
	condition ItemCondition,
	restockable bool,
	serialNumbers []string,
) (*ReturnItem, error) {
	if line == nil {
		return nil, shared.NewDomainError("INVALID_SALE_LINE", "Sale line cannot be nil")
	}
	if quantityReturned.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Returned quantity must be positive")
	}
	if quantityReturned.GreaterThan(line.Quantity) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Returned quantity cannot exceed the sale line quantity")
	}
	if !condition.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONDITION", "Unknown item condition: "+string(condition))
	}
	if len(serialNumbers) > 0 {
		if !quantityReturned.IsInteger() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Serialized items must be returned in whole units")
		}
		if int64(len(serialNumbers)) != quantityReturned.IntPart() {
			return nil, shared.NewDomainError("SERIAL_COUNT_MISMATCH", "Serial number count must match the returned quantity")
		}
	}

	now := time.Now()
	item := &ReturnItem{
		ID:               uuid.New(),
		ReturnID:         returnID,
		SaleLineID:       line.ID,
		ProductID:        line.ProductID,
		QuantityOriginal: line.Quantity,
		QuantityReturned: quantityReturned,
		UnitPrice:        line.UnitPrice,
		LineAmount:       quantityReturned.Mul(line.UnitPrice),
		Condition:        condition,
		Restockable:      restockable,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	seen := make(map[string]struct{}, len(serialNumbers))
	for _, sn := range serialNumbers {
		if sn == "" {
			return nil, shared.NewDomainError("INVALID_SERIAL", "Serial number cannot be empty")
		}
		if _, dup := seen[sn]; dup {
			return nil, shared.NewDomainError("DUPLICATE_SERIAL", "Serial number listed twice: "+sn)
		}
		seen[sn] = struct{}{}
		item.Serials = append(item.Serials, ReturnItemSerial{
			ID:           uuid.New(),
			ReturnItemID: item.ID,
			ProductID:    line.ProductID,
			SerialNumber: sn,
			CreatedAt:    now,
		})
	}

	return item, nil
}

// SetReason sets the per-item return reason
func (i *ReturnItem) SetReason(reason string) {
	i.Reason = reason
	i.UpdatedAt = time.Now()
}

// IsSerialized returns true when serial numbers are attached to the item
func (i *ReturnItem) IsSerialized() bool {
	return len(i.Serials) > 0
}

// IsRestockableAsNew reports whether completion should move this item back
// into sellable stock
func (i *ReturnItem) IsRestockableAsNew() bool {
	return i.Restockable && i.Condition == ConditionNew
}

// SerialNumbers returns the serial numbers attached to this item
func (i *ReturnItem) SerialNumbers() []string {
	sns := make([]string, len(i.Serials))
	for idx := range i.Serials {
		sns[idx] = i.Serials[idx].SerialNumber
	}
	return sns
}
