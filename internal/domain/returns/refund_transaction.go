package returns

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RefundMethod represents how the customer is compensated
type RefundMethod string

const (
	RefundMethodOriginalPayment RefundMethod = "ORIGINAL_PAYMENT"
	RefundMethodCash            RefundMethod = "CASH"
	RefundMethodStoreCredit     RefundMethod = "STORE_CREDIT"
	RefundMethodExchange        RefundMethod = "EXCHANGE"
)

// IsValid checks if the refund method is known
func (m RefundMethod) IsValid() bool {
	switch m {
	case RefundMethodOriginalPayment, RefundMethodCash, RefundMethodStoreCredit, RefundMethodExchange:
		return true
	}
	return false
}

// String returns the string representation of RefundMethod
func (m RefundMethod) String() string {
	return string(m)
}

// TransactionKind classifies a refund transaction row
type TransactionKind string

const (
	TransactionKindRefund      TransactionKind = "REFUND"
	TransactionKindStoreCredit TransactionKind = "STORE_CREDIT"
	TransactionKindExchange    TransactionKind = "EXCHANGE"
)

// RefundTransaction records one actual money movement attached to a return.
// Rows are immutable once created; corrections require a new row.
type RefundTransaction struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ReturnID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind      TransactionKind `gorm:"type:varchar(20);not null"`
	Method    RefundMethod    `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Notes     string          `gorm:"type:varchar(255)"`
	CreatedBy *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (RefundTransaction) TableName() string {
	return "refund_transactions"
}

// NewRefundTransaction creates an immutable refund transaction row
func NewRefundTransaction(returnID uuid.UUID, kind TransactionKind, method RefundMethod, amount decimal.Decimal) (*RefundTransaction, error) {
	if returnID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RETURN", "Return ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_REFUND_METHOD", "Unknown refund method: "+string(method))
	}
	return &RefundTransaction{
		ID:        uuid.New(),
		ReturnID:  returnID,
		Kind:      kind,
		Method:    method,
		Amount:    amount,
		CreatedAt: time.Now(),
	}, nil
}
