package returns

import (
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for Return
const AggregateTypeReturn = "Return"

// Event type constants for Return
const (
	EventTypeReturnCreated   = "ReturnCreated"
	EventTypeReturnApproved  = "ReturnApproved"
	EventTypeReturnRejected  = "ReturnRejected"
	EventTypeReturnCompleted = "ReturnCompleted"
	EventTypeReturnCancelled = "ReturnCancelled"
)

// ReturnItemInfo represents item information for events
type ReturnItemInfo struct {
	ItemID           uuid.UUID       `json:"item_id"`
	SaleLineID       uuid.UUID       `json:"sale_line_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	QuantityReturned decimal.Decimal `json:"quantity_returned"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Condition        ItemCondition   `json:"condition"`
	Restockable      bool            `json:"restockable"`
	SerialNumbers    []string        `json:"serial_numbers,omitempty"`
}

func itemInfos(items []ReturnItem) []ReturnItemInfo {
	infos := make([]ReturnItemInfo, len(items))
	for i := range items {
		infos[i] = ReturnItemInfo{
			ItemID:           items[i].ID,
			SaleLineID:       items[i].SaleLineID,
			ProductID:        items[i].ProductID,
			QuantityReturned: items[i].QuantityReturned,
			UnitPrice:        items[i].UnitPrice,
			Condition:        items[i].Condition,
			Restockable:      items[i].Restockable,
			SerialNumbers:    items[i].SerialNumbers(),
		}
	}
	return infos
}

// ReturnCreatedEvent is raised when a new return enters the workflow
type ReturnCreatedEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID        `json:"return_id"`
	ReturnNumber string           `json:"return_number"`
	SaleID       uuid.UUID        `json:"sale_id"`
	ReturnAmount decimal.Decimal  `json:"return_amount"`
	Items        []ReturnItemInfo `json:"items"`
}

// NewReturnCreatedEvent creates a new ReturnCreatedEvent
func NewReturnCreatedEvent(r *Return) *ReturnCreatedEvent {
	return &ReturnCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnCreated, AggregateTypeReturn, r.ID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		SaleID:          r.SaleID,
		ReturnAmount:    r.ReturnAmount,
		Items:           itemInfos(r.Items),
	}
}

// EventType returns the event type name
func (e *ReturnCreatedEvent) EventType() string {
	return EventTypeReturnCreated
}

// ReturnApprovedEvent is raised when a return is approved with its
// authoritative settlement
type ReturnApprovedEvent struct {
	shared.BaseDomainEvent
	ReturnID          uuid.UUID       `json:"return_id"`
	ReturnNumber      string          `json:"return_number"`
	RefundAmount      decimal.Decimal `json:"refund_amount"`
	StoreCreditAmount decimal.Decimal `json:"store_credit_amount"`
	ProcessingFee     decimal.Decimal `json:"processing_fee"`
	RestockingFee     decimal.Decimal `json:"restocking_fee"`
}

// NewReturnApprovedEvent creates a new ReturnApprovedEvent
func NewReturnApprovedEvent(r *Return) *ReturnApprovedEvent {
	return &ReturnApprovedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeReturnApproved, AggregateTypeReturn, r.ID),
		ReturnID:          r.ID,
		ReturnNumber:      r.ReturnNumber,
		RefundAmount:      r.RefundAmount,
		StoreCreditAmount: r.StoreCreditAmount,
		ProcessingFee:     r.ProcessingFee,
		RestockingFee:     r.RestockingFee,
	}
}

// EventType returns the event type name
func (e *ReturnApprovedEvent) EventType() string {
	return EventTypeReturnApproved
}

// ReturnRejectedEvent is raised when a return is rejected
type ReturnRejectedEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID `json:"return_id"`
	ReturnNumber string    `json:"return_number"`
	Reason       string    `json:"reason"`
}

// NewReturnRejectedEvent creates a new ReturnRejectedEvent
func NewReturnRejectedEvent(r *Return) *ReturnRejectedEvent {
	return &ReturnRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnRejected, AggregateTypeReturn, r.ID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		Reason:          r.RejectionReason,
	}
}

// EventType returns the event type name
func (e *ReturnRejectedEvent) EventType() string {
	return EventTypeReturnRejected
}

// ReturnCompletedEvent is raised when a return is finalized and inventory
// has been reconciled
type ReturnCompletedEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID        `json:"return_id"`
	ReturnNumber string           `json:"return_number"`
	SaleID       uuid.UUID        `json:"sale_id"`
	Items        []ReturnItemInfo `json:"items"`
}

// NewReturnCompletedEvent creates a new ReturnCompletedEvent
func NewReturnCompletedEvent(r *Return) *ReturnCompletedEvent {
	return &ReturnCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnCompleted, AggregateTypeReturn, r.ID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		SaleID:          r.SaleID,
		Items:           itemInfos(r.Items),
	}
}

// EventType returns the event type name
func (e *ReturnCompletedEvent) EventType() string {
	return EventTypeReturnCompleted
}

// ReturnCancelledEvent is raised when a return is cancelled
type ReturnCancelledEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID `json:"return_id"`
	ReturnNumber string    `json:"return_number"`
	Reason       string    `json:"reason"`
}

// NewReturnCancelledEvent creates a new ReturnCancelledEvent
func NewReturnCancelledEvent(r *Return) *ReturnCancelledEvent {
	return &ReturnCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnCancelled, AggregateTypeReturn, r.ID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		Reason:          r.CancelReason,
	}
}

// EventType returns the event type name
func (e *ReturnCancelledEvent) EventType() string {
	return EventTypeReturnCancelled
}
