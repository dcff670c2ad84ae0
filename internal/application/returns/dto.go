package returns

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/returns"
	"github.com/shopspring/decimal"
)

// ==================== Request DTOs ====================

// CreateReturnRequest represents a request to create a return
type CreateReturnRequest struct {
	SaleID        uuid.UUID               `json:"sale_id" binding:"required"`
	RefundMethod  string                  `json:"refund_method" binding:"required,oneof=ORIGINAL_PAYMENT CASH STORE_CREDIT EXCHANGE"`
	Items         []CreateReturnItemInput `json:"items" binding:"required,min=1,dive"`
	ProcessingFee decimal.Decimal         `json:"processing_fee"`
	RestockingFee decimal.Decimal         `json:"restocking_fee"`
	Reason        string                  `json:"reason" binding:"max=255"`
	Notes         string                  `json:"notes" binding:"max=500"`
	CreatedBy     *uuid.UUID              `json:"-"` // from auth context, not the body
}

// CreateReturnItemInput represents an item in the create return request
type CreateReturnItemInput struct {
	SaleLineID       uuid.UUID       `json:"sale_line_id" binding:"required"`
	QuantityReturned decimal.Decimal `json:"quantity_returned" binding:"required"`
	Condition        string          `json:"condition" binding:"required,oneof=NEW USED DAMAGED DEFECTIVE"`
	Restockable      bool            `json:"restockable"`
	SerialNumbers    []string        `json:"serial_numbers"`
	Reason           string          `json:"reason" binding:"max=255"`
}

// ApproveReturnRequest represents a request to approve a return with its
// authoritative settlement
type ApproveReturnRequest struct {
	RefundAmount      decimal.Decimal  `json:"refund_amount"`
	StoreCreditAmount decimal.Decimal  `json:"store_credit_amount"`
	ProcessingFee     *decimal.Decimal `json:"processing_fee"`
	RestockingFee     *decimal.Decimal `json:"restocking_fee"`
	Notes             string           `json:"notes" binding:"max=500"`
}

// RejectReturnRequest represents a request to reject a return
type RejectReturnRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// CancelReturnRequest represents a request to cancel a return
type CancelReturnRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ReturnListFilter represents filter options for the return list
type ReturnListFilter struct {
	Search    string                `form:"search"`
	SaleID    *uuid.UUID            `form:"sale_id"`
	Status    *returns.ReturnStatus `form:"status"`
	Statuses  []string              `form:"statuses"`
	StartDate *time.Time            `form:"start_date"`
	EndDate   *time.Time            `form:"end_date"`
	MinAmount *decimal.Decimal      `form:"min_amount"`
	MaxAmount *decimal.Decimal      `form:"max_amount"`
	Page      int                   `form:"page" binding:"omitempty,min=1"`
	PageSize  int                   `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string                `form:"order_by"`
	OrderDir  string                `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Response DTOs ====================

// ReturnResponse represents a return in API responses
type ReturnResponse struct {
	ID                uuid.UUID                   `json:"id"`
	ReturnNumber      string                      `json:"return_number"`
	SaleID            uuid.UUID                   `json:"sale_id"`
	SaleNumber        string                      `json:"sale_number"`
	Status            string                      `json:"status"`
	RefundMethod      string                      `json:"refund_method"`
	ReturnAmount      decimal.Decimal             `json:"return_amount"`
	RefundAmount      decimal.Decimal             `json:"refund_amount"`
	StoreCreditAmount decimal.Decimal             `json:"store_credit_amount"`
	SettlementAmount  decimal.Decimal             `json:"settlement_amount"`
	ProcessingFee     decimal.Decimal             `json:"processing_fee"`
	RestockingFee     decimal.Decimal             `json:"restocking_fee"`
	Items             []ReturnItemResponse        `json:"items"`
	Transactions      []RefundTransactionResponse `json:"transactions,omitempty"`
	ItemCount         int                         `json:"item_count"`
	TotalQuantity     decimal.Decimal             `json:"total_quantity"`
	Reason            string                      `json:"reason,omitempty"`
	Notes             string                      `json:"notes,omitempty"`
	ApprovedAt        *time.Time                  `json:"approved_at,omitempty"`
	ApprovedBy        *uuid.UUID                  `json:"approved_by,omitempty"`
	RejectedAt        *time.Time                  `json:"rejected_at,omitempty"`
	RejectedBy        *uuid.UUID                  `json:"rejected_by,omitempty"`
	RejectionReason   string                      `json:"rejection_reason,omitempty"`
	CompletedAt       *time.Time                  `json:"completed_at,omitempty"`
	CompletedBy       *uuid.UUID                  `json:"completed_by,omitempty"`
	CancelledAt       *time.Time                  `json:"cancelled_at,omitempty"`
	CancelReason      string                      `json:"cancel_reason,omitempty"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
	Version           int                         `json:"version"`
}

// ReturnListItemResponse represents a return in list responses (less detail)
type ReturnListItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ReturnNumber string          `json:"return_number"`
	SaleID       uuid.UUID       `json:"sale_id"`
	SaleNumber   string          `json:"sale_number"`
	Status       string          `json:"status"`
	RefundMethod string          `json:"refund_method"`
	ReturnAmount decimal.Decimal `json:"return_amount"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	ItemCount    int             `json:"item_count"`
	ApprovedAt   *time.Time      `json:"approved_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ReturnItemResponse represents a return item in API responses
type ReturnItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	SaleLineID       uuid.UUID       `json:"sale_line_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	QuantityOriginal decimal.Decimal `json:"quantity_original"`
	QuantityReturned decimal.Decimal `json:"quantity_returned"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	LineAmount       decimal.Decimal `json:"line_amount"`
	Condition        string          `json:"condition"`
	Restockable      bool            `json:"restockable"`
	SerialNumbers    []string        `json:"serial_numbers,omitempty"`
	Reason           string          `json:"reason,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// RefundTransactionResponse represents a refund transaction in API responses
type RefundTransactionResponse struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ReturnStatusSummary represents a summary of returns by status
type ReturnStatusSummary struct {
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
	Total     int64 `json:"total"`
}

// ==================== Converters ====================

// ToReturnResponse converts a domain Return to a response DTO
func ToReturnResponse(r *returns.Return) ReturnResponse {
	items := make([]ReturnItemResponse, len(r.Items))
	for i := range r.Items {
		items[i] = ToReturnItemResponse(&r.Items[i])
	}

	var transactions []RefundTransactionResponse
	for i := range r.Transactions {
		transactions = append(transactions, ToRefundTransactionResponse(&r.Transactions[i]))
	}

	return ReturnResponse{
		ID:                r.ID,
		ReturnNumber:      r.ReturnNumber,
		SaleID:            r.SaleID,
		SaleNumber:        r.SaleNumber,
		Status:            string(r.Status),
		RefundMethod:      string(r.RefundMethod),
		ReturnAmount:      r.ReturnAmount,
		RefundAmount:      r.RefundAmount,
		StoreCreditAmount: r.StoreCreditAmount,
		SettlementAmount:  r.SettlementAmount(),
		ProcessingFee:     r.ProcessingFee,
		RestockingFee:     r.RestockingFee,
		Items:             items,
		Transactions:      transactions,
		ItemCount:         r.ItemCount(),
		TotalQuantity:     r.TotalReturnedQuantity(),
		Reason:            r.Reason,
		Notes:             r.Notes,
		ApprovedAt:        r.ApprovedAt,
		ApprovedBy:        r.ApprovedBy,
		RejectedAt:        r.RejectedAt,
		RejectedBy:        r.RejectedBy,
		RejectionReason:   r.RejectionReason,
		CompletedAt:       r.CompletedAt,
		CompletedBy:       r.CompletedBy,
		CancelledAt:       r.CancelledAt,
		CancelReason:      r.CancelReason,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		Version:           r.Version,
	}
}

// ToReturnItemResponse converts a domain ReturnItem to a response DTO
func ToReturnItemResponse(item *returns.ReturnItem) ReturnItemResponse {
	return ReturnItemResponse{
		ID:               item.ID,
		SaleLineID:       item.SaleLineID,
		ProductID:        item.ProductID,
		QuantityOriginal: item.QuantityOriginal,
		QuantityReturned: item.QuantityReturned,
		UnitPrice:        item.UnitPrice,
		LineAmount:       item.LineAmount,
		Condition:        string(item.Condition),
		Restockable:      item.Restockable,
		SerialNumbers:    item.SerialNumbers(),
		Reason:           item.Reason,
		CreatedAt:        item.CreatedAt,
	}
}

// ToRefundTransactionResponse converts a domain RefundTransaction to a response DTO
func ToRefundTransactionResponse(tx *returns.RefundTransaction) RefundTransactionResponse {
	return RefundTransactionResponse{
		ID:        tx.ID,
		Kind:      string(tx.Kind),
		Method:    string(tx.Method),
		Amount:    tx.Amount,
		Notes:     tx.Notes,
		CreatedAt: tx.CreatedAt,
	}
}

// ToReturnListItemResponse converts a domain Return to a list response DTO
func ToReturnListItemResponse(r *returns.Return) ReturnListItemResponse {
	return ReturnListItemResponse{
		ID:           r.ID,
		ReturnNumber: r.ReturnNumber,
		SaleID:       r.SaleID,
		SaleNumber:   r.SaleNumber,
		Status:       string(r.Status),
		RefundMethod: string(r.RefundMethod),
		ReturnAmount: r.ReturnAmount,
		RefundAmount: r.RefundAmount,
		ItemCount:    r.ItemCount(),
		ApprovedAt:   r.ApprovedAt,
		CompletedAt:  r.CompletedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ToReturnListItemResponses converts a slice of domain returns to list responses
func ToReturnListItemResponses(items []returns.Return) []ReturnListItemResponse {
	responses := make([]ReturnListItemResponse, len(items))
	for i := range items {
		responses[i] = ToReturnListItemResponse(&items[i])
	}
	return responses
}
