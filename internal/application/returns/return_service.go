package returns

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	inventoryapp "github.com/retailpos/backend/internal/application/inventory"
	"github.com/retailpos/backend/internal/domain/returns"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReturnService drives the return lifecycle. Every state-changing operation
// runs its guarded status write and its inventory side effects inside one
// transaction scope, so a transition either fully happens or leaves no trace.
// Domain events are published after the transaction commits.
type ReturnService struct {
	returnRepo     returns.ReturnRepository
	saleRepo       sales.SaleReader
	scope          inventoryapp.TransactionScope
	ledger         *inventoryapp.SerialLedger
	applier        *inventoryapp.StockApplier
	cache          ReturnCache
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewReturnService creates a new ReturnService
func NewReturnService(
	returnRepo returns.ReturnRepository,
	saleRepo sales.SaleReader,
	scope inventoryapp.TransactionScope,
	ledger *inventoryapp.SerialLedger,
	applier *inventoryapp.StockApplier,
	logger *zap.Logger,
) *ReturnService {
	return &ReturnService{
		returnRepo: returnRepo,
		saleRepo:   saleRepo,
		scope:      scope,
		ledger:     ledger,
		applier:    applier,
		cache:      NewNoOpReturnCache(),
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ReturnService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetCache sets the return read-model cache
func (s *ReturnService) SetCache(cache ReturnCache) {
	if cache != nil {
		s.cache = cache
	}
}

// Create validates a return request against the original sale and persists
// the new return together with its serialized-unit transitions. The sold
// units named in the request move to RETURNED in the same transaction that
// inserts the return.
func (s *ReturnService) Create(ctx context.Context, req CreateReturnRequest) (*ReturnResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, req.SaleID)
	if err != nil {
		return nil, err
	}

	returnNumber, err := s.returnRepo.GenerateReturnNumber(ctx)
	if err != nil {
		return nil, err
	}

	r, err := returns.NewReturn(returnNumber, sale, returns.RefundMethod(req.RefundMethod), req.Reason)
	if err != nil {
		return nil, err
	}
	if req.Notes != "" {
		r.Notes = req.Notes
	}
	if req.CreatedBy != nil {
		r.CreatedBy = req.CreatedBy
	}

	for _, input := range req.Items {
		line := sale.GetLine(input.SaleLineID)
		if line == nil {
			return nil, shared.NewDomainError("LINE_NOT_FOUND", "Sale line not found: "+input.SaleLineID.String())
		}
		if line.Serialized && len(input.SerialNumbers) == 0 {
			return nil, shared.NewDomainError("SERIALS_REQUIRED",
				"Serial numbers are required for serialized sale lines")
		}

		if err := s.checkCumulativeQuantity(ctx, line, input); err != nil {
			return nil, err
		}

		item, err := r.AddItem(line, input.QuantityReturned, returns.ItemCondition(input.Condition), input.Restockable, input.SerialNumbers)
		if err != nil {
			return nil, err
		}
		if input.Reason != "" {
			item.SetReason(input.Reason)
		}
	}

	if err := r.ApplyCreationSettlement(req.ProcessingFee, req.RestockingFee); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos inventoryapp.TransactionalRepositories) error {
		if err := repos.ReturnRepo().Create(ctx, r); err != nil {
			return err
		}
		for idx := range r.Items {
			item := &r.Items[idx]
			if !item.IsSerialized() {
				continue
			}
			if _, err := s.ledger.MarkUnitsReturned(ctx, repos, item.ProductID, item.SerialNumbers(), r.ReturnNumber); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, r)

	response := ToReturnResponse(r)
	s.cache.Set(ctx, &response)
	return &response, nil
}

// checkCumulativeQuantity enforces the cross-return ceiling: the sum of
// quantities already returned against a sale line plus this request must not
// exceed the quantity originally sold.
func (s *ReturnService) checkCumulativeQuantity(ctx context.Context, line *sales.SaleLine, input CreateReturnItemInput) error {
	prior, err := s.returnRepo.SumReturnedQuantityForSaleLine(ctx, line.ID)
	if err != nil {
		return err
	}
	if prior.Add(input.QuantityReturned).GreaterThan(line.Quantity) {
		return shared.NewDomainError("RETURN_QUANTITY_EXCEEDED", fmt.Sprintf(
			"Sale line %s has %s of %s units already returned",
			line.ID, prior.String(), line.Quantity.String()))
	}
	return nil
}

// Approve fixes the authoritative settlement and transitions the return to
// APPROVED under the status guard. Concurrent approvals race on the guard;
// the loser gets shared.ErrConcurrencyConflict and applies nothing.
func (s *ReturnService) Approve(ctx context.Context, returnID, approverID uuid.UUID, req ApproveReturnRequest) (*ReturnResponse, error) {
	r, err := s.returnRepo.FindByID(ctx, returnID)
	if err != nil {
		return nil, err
	}

	priorTxCount := len(r.Transactions)
	err = r.Approve(approverID, returns.ApprovalInput{
		RefundAmount:      req.RefundAmount,
		StoreCreditAmount: req.StoreCreditAmount,
		ProcessingFee:     req.ProcessingFee,
		RestockingFee:     req.RestockingFee,
		Notes:             req.Notes,
	})
	if err != nil {
		return nil, err
	}

	update := returns.StatusUpdate{
		Fields: map[string]any{
			"refund_amount":       r.RefundAmount,
			"store_credit_amount": r.StoreCreditAmount,
			"processing_fee":      r.ProcessingFee,
			"restocking_fee":      r.RestockingFee,
			"notes":               r.Notes,
			"approved_at":         r.ApprovedAt,
			"approved_by":         r.ApprovedBy,
			"updated_at":          r.UpdatedAt,
		},
		Transactions: r.Transactions[priorTxCount:],
	}

	err = s.scope.Execute(ctx, func(repos inventoryapp.TransactionalRepositories) error {
		return repos.ReturnRepo().UpdateStatus(ctx, returnID, returns.ReturnStatusPending, returns.ReturnStatusApproved, update)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, r)
	s.cache.Invalidate(ctx, returnID)

	response := ToReturnResponse(r)
	return &response, nil
}

// Reject transitions the return to REJECTED under the status guard.
func (s *ReturnService) Reject(ctx context.Context, returnID, rejecterID uuid.UUID, req RejectReturnRequest) (*ReturnResponse, error) {
	r, err := s.returnRepo.FindByID(ctx, returnID)
	if err != nil {
		return nil, err
	}

	if err := r.Reject(rejecterID, req.Reason); err != nil {
		return nil, err
	}

	update := returns.StatusUpdate{
		Fields: map[string]any{
			"rejected_at":      r.RejectedAt,
			"rejected_by":      r.RejectedBy,
			"rejection_reason": r.RejectionReason,
			"updated_at":       r.UpdatedAt,
		},
	}

	err = s.scope.Execute(ctx, func(repos inventoryapp.TransactionalRepositories) error {
		return repos.ReturnRepo().UpdateStatus(ctx, returnID, returns.ReturnStatusPending, returns.ReturnStatusRejected, update)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, r)
	s.cache.Invalidate(ctx, returnID)

	response := ToReturnResponse(r)
	return &response, nil
}

// Cancel transitions the return to CANCELLED under the status guard.
func (s *ReturnService) Cancel(ctx context.Context, returnID uuid.UUID, req CancelReturnRequest) (*ReturnResponse, error) {
	r, err := s.returnRepo.FindByID(ctx, returnID)
	if err != nil {
		return nil, err
	}

	if err := r.Cancel(req.Reason); err != nil {
		return nil, err
	}

	update := returns.StatusUpdate{
		Fields: map[string]any{
			"cancelled_at":  r.CancelledAt,
			"cancel_reason": r.CancelReason,
			"updated_at":    r.UpdatedAt,
		},
	}

	err = s.scope.Execute(ctx, func(repos inventoryapp.TransactionalRepositories) error {
		return repos.ReturnRepo().UpdateStatus(ctx, returnID, returns.ReturnStatusPending, returns.ReturnStatusCancelled, update)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, r)
	s.cache.Invalidate(ctx, returnID)

	response := ToReturnResponse(r)
	return &response, nil
}

// Complete finalizes the return and reconciles inventory: restockable-as-new
// serialized units move back IN_STOCK, restockable-as-new bulk quantities
// increment the stock counter, and every movement is journaled. All of it
// shares the transaction with the guarded status write.
func (s *ReturnService) Complete(ctx context.Context, returnID, completerID uuid.UUID) (*ReturnResponse, error) {
	r, err := s.returnRepo.FindByID(ctx, returnID)
	if err != nil {
		return nil, err
	}

	if err := r.Complete(completerID); err != nil {
		return nil, err
	}

	update := returns.StatusUpdate{
		Fields: map[string]any{
			"completed_at": r.CompletedAt,
			"completed_by": r.CompletedBy,
			"updated_at":   r.UpdatedAt,
		},
	}

	err = s.scope.Execute(ctx, func(repos inventoryapp.TransactionalRepositories) error {
		if err := repos.ReturnRepo().UpdateStatus(ctx, returnID, returns.ReturnStatusApproved, returns.ReturnStatusCompleted, update); err != nil {
			return err
		}

		for idx := range r.Items {
			item := &r.Items[idx]
			if !item.IsRestockableAsNew() {
				// Damaged, defective, or non-restockable goods stay out of
				// sellable stock; serialized units remain RETURNED.
				continue
			}
			if item.IsSerialized() {
				if _, err := s.ledger.MarkUnitsRestocked(ctx, repos, item.ProductID, item.SerialNumbers(), r.ReturnNumber); err != nil {
					return err
				}
				continue
			}
			reason := fmt.Sprintf("Return completed: %s", r.ReturnNumber)
			if err := s.applier.ApplyRestock(ctx, repos, item.ProductID, item.QuantityReturned, r.ReturnNumber, reason); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, r)
	s.cache.Invalidate(ctx, returnID)

	response := ToReturnResponse(r)
	return &response, nil
}

// GetByID retrieves a return by ID, cache-aside
func (s *ReturnService) GetByID(ctx context.Context, returnID uuid.UUID) (*ReturnResponse, error) {
	if cached, ok := s.cache.Get(ctx, returnID); ok {
		return cached, nil
	}

	r, err := s.returnRepo.FindByID(ctx, returnID)
	if err != nil {
		return nil, err
	}

	response := ToReturnResponse(r)
	s.cache.Set(ctx, &response)
	return &response, nil
}

// GetByReturnNumber retrieves a return by its return number
func (s *ReturnService) GetByReturnNumber(ctx context.Context, returnNumber string) (*ReturnResponse, error) {
	r, err := s.returnRepo.FindByReturnNumber(ctx, returnNumber)
	if err != nil {
		return nil, err
	}
	response := ToReturnResponse(r)
	return &response, nil
}

// List retrieves returns with filtering and pagination
func (s *ReturnService) List(ctx context.Context, filter ReturnListFilter) ([]ReturnListItemResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.Search = filter.Search
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}

	if filter.SaleID != nil {
		domainFilter.Filters["sale_id"] = *filter.SaleID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if len(filter.Statuses) > 0 {
		domainFilter.Filters["statuses"] = filter.Statuses
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}
	if filter.MinAmount != nil {
		domainFilter.Filters["min_amount"] = *filter.MinAmount
	}
	if filter.MaxAmount != nil {
		domainFilter.Filters["max_amount"] = *filter.MaxAmount
	}

	items, err := s.returnRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.returnRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToReturnListItemResponses(items), total, nil
}

// ListBySale retrieves all returns raised against a sale
func (s *ReturnService) ListBySale(ctx context.Context, saleID uuid.UUID) ([]ReturnListItemResponse, error) {
	items, err := s.returnRepo.FindBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return ToReturnListItemResponses(items), nil
}

// ListPendingApproval retrieves returns waiting for approval
func (s *ReturnService) ListPendingApproval(ctx context.Context, filter ReturnListFilter) ([]ReturnListItemResponse, int64, error) {
	status := returns.ReturnStatusPending
	filter.Status = &status
	return s.List(ctx, filter)
}

// GetStatusSummary returns a count of returns per status for dashboards
func (s *ReturnService) GetStatusSummary(ctx context.Context) (*ReturnStatusSummary, error) {
	summary := &ReturnStatusSummary{}

	var err error
	summary.Pending, err = s.returnRepo.CountByStatus(ctx, returns.ReturnStatusPending)
	if err != nil {
		return nil, err
	}
	summary.Approved, err = s.returnRepo.CountByStatus(ctx, returns.ReturnStatusApproved)
	if err != nil {
		return nil, err
	}
	summary.Rejected, err = s.returnRepo.CountByStatus(ctx, returns.ReturnStatusRejected)
	if err != nil {
		return nil, err
	}
	summary.Completed, err = s.returnRepo.CountByStatus(ctx, returns.ReturnStatusCompleted)
	if err != nil {
		return nil, err
	}
	summary.Cancelled, err = s.returnRepo.CountByStatus(ctx, returns.ReturnStatusCancelled)
	if err != nil {
		return nil, err
	}

	summary.Total = summary.Pending + summary.Approved + summary.Rejected + summary.Completed + summary.Cancelled
	return summary, nil
}

// publishEvents publishes the aggregate's pending events after commit.
// Publish failures are logged, not propagated: the state change is already
// durable.
func (s *ReturnService) publishEvents(ctx context.Context, r *returns.Return) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range r.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.String("return_id", r.ID.String()),
				zap.Error(err),
			)
		}
	}
	r.ClearDomainEvents()
}
