// Package sales holds the read-side view of completed sales that the return
// engine validates against. Sales themselves are owned by the selling context;
// this package only exposes what a return needs: the sale, its lines, and the
// prices/quantities frozen at sale time.
package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the status of a sale
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusVoided    SaleStatus = "VOIDED"
)

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// SaleLine represents a line item of an original sale
type SaleLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Serialized bool            `gorm:"not null;default:false"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (SaleLine) TableName() string {
	return "sale_lines"
}

// LineTotal returns quantity * unit price
func (l *SaleLine) LineTotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Sale represents a completed sale that returns are raised against
type Sale struct {
	shared.BaseEntity
	SaleNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID *uuid.UUID      `gorm:"type:uuid;index"`
	Status     SaleStatus      `gorm:"type:varchar(20);not null"`
	Total      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Lines      []SaleLine      `gorm:"foreignKey:SaleID"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// GetLine returns a sale line by its ID, or nil when absent
func (s *Sale) GetLine(lineID uuid.UUID) *SaleLine {
	for idx := range s.Lines {
		if s.Lines[idx].ID == lineID {
			return &s.Lines[idx]
		}
	}
	return nil
}

// IsReturnable returns true if returns may be raised against this sale
func (s *Sale) IsReturnable() bool {
	return s.Status == SaleStatusCompleted
}
