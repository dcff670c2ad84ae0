// Package inventory holds the serialized-unit ledger and aggregate stock
// counters that the return engine reconciles. Serialized units carry a small
// mutable status; every status change is journaled as an append-only
// StockMovement so current state can always be audited against history.
package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// SerialStatus represents the lifecycle status of a serialized unit
type SerialStatus string

const (
	SerialStatusInStock  SerialStatus = "IN_STOCK"
	SerialStatusReserved SerialStatus = "RESERVED"
	SerialStatusSold     SerialStatus = "SOLD"
	SerialStatusReturned SerialStatus = "RETURNED"
	SerialStatusDamaged  SerialStatus = "DAMAGED"
)

// IsValid checks if the status is a valid SerialStatus
func (s SerialStatus) IsValid() bool {
	switch s {
	case SerialStatusInStock, SerialStatusReserved, SerialStatusSold,
		SerialStatusReturned, SerialStatusDamaged:
		return true
	}
	return false
}

// String returns the string representation of SerialStatus
func (s SerialStatus) String() string {
	return string(s)
}

// SerialUnit is an individually tracked inventory unit identified by
// (product, serial number). Status is mutated in place; the movement journal
// is the audit trail.
type SerialUnit struct {
	shared.BaseEntity
	ProductID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_serial_product_sn,priority:1"`
	SerialNumber string       `gorm:"type:varchar(100);not null;uniqueIndex:idx_serial_product_sn,priority:2"`
	Status       SerialStatus `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (SerialUnit) TableName() string {
	return "serial_units"
}

// NewSerialUnit creates a serialized unit in stock
func NewSerialUnit(productID uuid.UUID, serialNumber string) (*SerialUnit, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if serialNumber == "" {
		return nil, shared.NewDomainError("INVALID_SERIAL", "Serial number cannot be empty")
	}
	return &SerialUnit{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		SerialNumber: serialNumber,
		Status:       SerialStatusInStock,
	}, nil
}

// MarkReturned transitions the unit from SOLD to RETURNED. Any other current
// status reports false so callers can skip without treating it as a failure;
// a unit already RETURNED is a tolerated duplicate submission.
func (u *SerialUnit) MarkReturned() bool {
	if u.Status != SerialStatusSold {
		return false
	}
	u.Status = SerialStatusReturned
	u.UpdatedAt = time.Now()
	return true
}

// MarkRestocked transitions the unit from RETURNED to IN_STOCK. Same skip
// semantics as MarkReturned.
func (u *SerialUnit) MarkRestocked() bool {
	if u.Status != SerialStatusReturned {
		return false
	}
	u.Status = SerialStatusInStock
	u.UpdatedAt = time.Now()
	return true
}
