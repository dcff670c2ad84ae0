package returns

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReturnStatus represents the status of a return
type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "PENDING"   // Waiting for approval
	ReturnStatusApproved  ReturnStatus = "APPROVED"  // Approved, settlement fixed
	ReturnStatusRejected  ReturnStatus = "REJECTED"  // Rejected by approver
	ReturnStatusCompleted ReturnStatus = "COMPLETED" // Finalized, stock reconciled
	ReturnStatusCancelled ReturnStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ReturnStatus
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusPending, ReturnStatusApproved, ReturnStatusRejected,
		ReturnStatusCompleted, ReturnStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ReturnStatus
func (s ReturnStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	switch s {
	case ReturnStatusPending:
		return target == ReturnStatusApproved || target == ReturnStatusRejected || target == ReturnStatusCancelled
	case ReturnStatusApproved:
		return target == ReturnStatusCompleted
	case ReturnStatusRejected, ReturnStatusCompleted, ReturnStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true if the status permits no further transitions
func (s ReturnStatus) IsTerminal() bool {
	switch s {
	case ReturnStatusRejected, ReturnStatusCompleted, ReturnStatusCancelled:
		return true
	}
	return false
}

// Return represents a customer return aggregate root. It references exactly
// one originating sale, owns its items and refund transactions, and moves
// through the pending → approved → completed workflow (or out via rejected /
// cancelled).
type Return struct {
	shared.BaseAggregateRoot
	ReturnNumber      string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	SaleID            uuid.UUID       `gorm:"type:uuid;not null;index"` // immutable once created
	SaleNumber        string          `gorm:"type:varchar(50);not null"`
	Status            ReturnStatus    `gorm:"type:varchar(20);not null;index"`
	RefundMethod      RefundMethod    `gorm:"type:varchar(20);not null"`
	ReturnAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"` // computed at creation, never mutated
	RefundAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	StoreCreditAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ProcessingFee     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RestockingFee     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason            string          `gorm:"type:varchar(255)"`
	Notes             string          `gorm:"type:varchar(500)"`
	Items             []ReturnItem    `gorm:"foreignKey:ReturnID"`
	Transactions      []RefundTransaction `gorm:"foreignKey:ReturnID"`
	CreatedBy         *uuid.UUID      `gorm:"type:uuid"`
	ApprovedAt        *time.Time
	ApprovedBy        *uuid.UUID `gorm:"type:uuid"`
	RejectedAt        *time.Time
	RejectedBy        *uuid.UUID `gorm:"type:uuid"`
	RejectionReason   string     `gorm:"type:varchar(500)"`
	CompletedAt       *time.Time
	CompletedBy       *uuid.UUID `gorm:"type:uuid"`
	CancelledAt       *time.Time
	CancelReason      string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Return) TableName() string {
	return "returns"
}

// NewReturn creates a new return against a completed sale. The return enters
// the workflow in PENDING; items are added by the caller before persisting.
func NewReturn(
	returnNumber string,
	sale *sales.Sale,
	refundMethod RefundMethod,
	reason string,
) (*Return, error) {
	if returnNumber == "" {
		return nil, shared.NewDomainError("INVALID_RETURN_NUMBER", "Return number cannot be empty")
	}
	if len(returnNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_RETURN_NUMBER", "Return number cannot exceed 50 characters")
	}
	if sale == nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale cannot be nil")
	}
	if !sale.IsReturnable() {
		return nil, shared.NewDomainError("INVALID_SALE_STATUS", "Returns can only be raised against completed sales")
	}
	if !refundMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_REFUND_METHOD", "Unknown refund method: "+string(refundMethod))
	}

	r := &Return{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReturnNumber:      returnNumber,
		SaleID:            sale.ID,
		SaleNumber:        sale.SaleNumber,
		Status:            ReturnStatusPending,
		RefundMethod:      refundMethod,
		ReturnAmount:      decimal.Zero,
		RefundAmount:      decimal.Zero,
		StoreCreditAmount: decimal.Zero,
		ProcessingFee:     decimal.Zero,
		RestockingFee:     decimal.Zero,
		Reason:            reason,
		Items:             make([]ReturnItem, 0),
	}

	return r, nil
}

// AddItem adds an item to the return. Only permitted before the return has
// been persisted into the workflow (status PENDING and not yet approved).
func (r *Return) AddItem(line *sales.SaleLine, quantityReturned decimal.Decimal, condition ItemCondition, restockable bool, serialNumbers []string) (*ReturnItem, error) {
	if r.Status != ReturnStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-pending return")
	}
	for idx := range r.Items {
		if r.Items[idx].SaleLineID == line.ID {
			return nil, shared.NewDomainError("DUPLICATE_ITEM", "Sale line already present in this return")
		}
	}

	item, err := NewReturnItem(r.ID, line, quantityReturned, condition, restockable, serialNumbers)
	if err != nil {
		return nil, err
	}

	r.Items = append(r.Items, *item)
	r.UpdatedAt = time.Now()
	return item, nil
}

// ApplyCreationSettlement freezes the return amount and stores the
// provisional settlement computed at intake. The provisional settlement goes
// into RefundAmount and is replaced wholesale at approval.
func (r *Return) ApplyCreationSettlement(processingFee, restockingFee decimal.Decimal) error {
	if len(r.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "A return must contain at least one item")
	}

	s, err := CalculateSettlement(SettlementLinesFromItems(r.Items), processingFee, restockingFee)
	if err != nil {
		return err
	}

	r.ReturnAmount = s.ReturnAmount
	r.ProcessingFee = s.ProcessingFee
	r.RestockingFee = s.RestockingFee
	r.RefundAmount = s.SettlementAmount
	r.StoreCreditAmount = decimal.Zero
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewReturnCreatedEvent(r))
	return nil
}

// ApprovalInput carries the settlement overrides supplied by the approver.
// Nil fee fields keep the creation-time fees.
type ApprovalInput struct {
	RefundAmount      decimal.Decimal
	StoreCreditAmount decimal.Decimal
	ProcessingFee     *decimal.Decimal
	RestockingFee     *decimal.Decimal
	Notes             string
}

// Approve fixes the authoritative settlement and moves the return to
// APPROVED. Settlement is recomputed with the (possibly overridden) fees;
// a negative settlement or an over-allocation is a validation error.
func (r *Return) Approve(approverID uuid.UUID, input ApprovalInput) error {
	if !r.Status.CanTransitionTo(ReturnStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve return in %s status", r.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}
	if input.RefundAmount.IsNegative() || input.StoreCreditAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund and store credit amounts cannot be negative")
	}

	processingFee := r.ProcessingFee
	if input.ProcessingFee != nil {
		processingFee = *input.ProcessingFee
	}
	restockingFee := r.RestockingFee
	if input.RestockingFee != nil {
		restockingFee = *input.RestockingFee
	}

	s, err := CalculateSettlement(SettlementLinesFromItems(r.Items), processingFee, restockingFee)
	if err != nil {
		return err
	}
	if input.RefundAmount.Add(input.StoreCreditAmount).GreaterThan(s.SettlementAmount) {
		return shared.NewDomainError("SETTLEMENT_EXCEEDED",
			"Refund plus store credit cannot exceed the settlement amount")
	}

	now := time.Now()
	r.Status = ReturnStatusApproved
	r.ProcessingFee = s.ProcessingFee
	r.RestockingFee = s.RestockingFee
	r.RefundAmount = input.RefundAmount
	r.StoreCreditAmount = input.StoreCreditAmount
	if input.Notes != "" {
		r.Notes = input.Notes
	}
	r.ApprovedAt = &now
	r.ApprovedBy = &approverID
	r.UpdatedAt = now

	if input.RefundAmount.IsPositive() {
		tx, err := NewRefundTransaction(r.ID, TransactionKindRefund, r.RefundMethod, input.RefundAmount)
		if err != nil {
			return err
		}
		tx.CreatedBy = &approverID
		r.Transactions = append(r.Transactions, *tx)
	}
	if input.StoreCreditAmount.IsPositive() {
		tx, err := NewRefundTransaction(r.ID, TransactionKindStoreCredit, RefundMethodStoreCredit, input.StoreCreditAmount)
		if err != nil {
			return err
		}
		tx.CreatedBy = &approverID
		r.Transactions = append(r.Transactions, *tx)
	}

	r.AddDomainEvent(NewReturnApprovedEvent(r))
	return nil
}

// Reject moves the return to REJECTED. A reason is required.
func (r *Return) Reject(rejecterID uuid.UUID, reason string) error {
	if !r.Status.CanTransitionTo(ReturnStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject return in %s status", r.Status))
	}
	if rejecterID == uuid.Nil {
		return shared.NewDomainError("INVALID_REJECTER", "Rejecter ID cannot be empty")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	r.Status = ReturnStatusRejected
	r.RejectedAt = &now
	r.RejectedBy = &rejecterID
	r.RejectionReason = reason
	r.UpdatedAt = now

	r.AddDomainEvent(NewReturnRejectedEvent(r))
	return nil
}

// Cancel moves the return to CANCELLED. Structurally like Reject but without
// a settlement outcome; only reachable from PENDING.
func (r *Return) Cancel(reason string) error {
	if !r.Status.CanTransitionTo(ReturnStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel return in %s status", r.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	r.Status = ReturnStatusCancelled
	r.CancelledAt = &now
	r.CancelReason = reason
	r.UpdatedAt = now

	r.AddDomainEvent(NewReturnCancelledEvent(r))
	return nil
}

// Complete marks the return as completed. Inventory reconciliation happens in
// the application layer within the same transaction as the status write.
func (r *Return) Complete(completerID uuid.UUID) error {
	if !r.Status.CanTransitionTo(ReturnStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete return in %s status", r.Status))
	}

	now := time.Now()
	r.Status = ReturnStatusCompleted
	r.CompletedAt = &now
	if completerID != uuid.Nil {
		r.CompletedBy = &completerID
	}
	r.UpdatedAt = now

	r.AddDomainEvent(NewReturnCompletedEvent(r))
	return nil
}

// GetItem returns an item by its ID
func (r *Return) GetItem(itemID uuid.UUID) *ReturnItem {
	for idx := range r.Items {
		if r.Items[idx].ID == itemID {
			return &r.Items[idx]
		}
	}
	return nil
}

// GetItemBySaleLine returns an item by its original sale line ID
func (r *Return) GetItemBySaleLine(saleLineID uuid.UUID) *ReturnItem {
	for idx := range r.Items {
		if r.Items[idx].SaleLineID == saleLineID {
			return &r.Items[idx]
		}
	}
	return nil
}

// ItemCount returns the number of items in the return
func (r *Return) ItemCount() int {
	return len(r.Items)
}

// TotalReturnedQuantity returns the sum of all item returned quantities
func (r *Return) TotalReturnedQuantity() decimal.Decimal {
	total := decimal.Zero
	for idx := range r.Items {
		total = total.Add(r.Items[idx].QuantityReturned)
	}
	return total
}

// SettlementAmount returns the current net settlement (refund + store credit)
func (r *Return) SettlementAmount() decimal.Decimal {
	return r.RefundAmount.Add(r.StoreCreditAmount)
}

// IsPending returns true if the return is pending approval
func (r *Return) IsPending() bool {
	return r.Status == ReturnStatusPending
}

// IsApproved returns true if the return is approved
func (r *Return) IsApproved() bool {
	return r.Status == ReturnStatusApproved
}

// IsCompleted returns true if the return is completed
func (r *Return) IsCompleted() bool {
	return r.Status == ReturnStatusCompleted
}

// IsTerminal returns true if the return is in a terminal state
func (r *Return) IsTerminal() bool {
	return r.Status.IsTerminal()
}
