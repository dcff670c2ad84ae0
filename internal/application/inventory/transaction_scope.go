package inventory

import (
	"context"

	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/returns"
)

// TransactionScope provides transactional access to the repositories touched
// by a return transition. When a function executes within a scope, every
// repository operation joins the same database transaction and commits or
// rolls back atomically. The guarded status write and its inventory side
// effects always run inside one scope so a lost race leaves no partial state.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a
// transaction. All returned repositories share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// ReturnRepo returns the return repository scoped to the current transaction
	ReturnRepo() returns.ReturnRepository
	// SerialUnitRepo returns the serialized-unit repository scoped to the current transaction
	SerialUnitRepo() inventory.SerialUnitRepository
	// StockMovementRepo returns the movement journal repository scoped to the current transaction
	StockMovementRepo() inventory.StockMovementRepository
	// StockLevelRepo returns the stock counter repository scoped to the current transaction
	StockLevelRepo() inventory.StockLevelRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing or when transaction support is not
// required.
type NoOpTransactionScope struct {
	returnRepo        returns.ReturnRepository
	serialUnitRepo    inventory.SerialUnitRepository
	stockMovementRepo inventory.StockMovementRepository
	stockLevelRepo    inventory.StockLevelRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	returnRepo returns.ReturnRepository,
	serialUnitRepo inventory.SerialUnitRepository,
	stockMovementRepo inventory.StockMovementRepository,
	stockLevelRepo inventory.StockLevelRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		returnRepo:        returnRepo,
		serialUnitRepo:    serialUnitRepo,
		stockMovementRepo: stockMovementRepo,
		stockLevelRepo:    stockLevelRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ReturnRepo returns the return repository.
func (s *NoOpTransactionScope) ReturnRepo() returns.ReturnRepository {
	return s.returnRepo
}

// SerialUnitRepo returns the serialized-unit repository.
func (s *NoOpTransactionScope) SerialUnitRepo() inventory.SerialUnitRepository {
	return s.serialUnitRepo
}

// StockMovementRepo returns the movement journal repository.
func (s *NoOpTransactionScope) StockMovementRepo() inventory.StockMovementRepository {
	return s.stockMovementRepo
}

// StockLevelRepo returns the stock counter repository.
func (s *NoOpTransactionScope) StockLevelRepo() inventory.StockLevelRepository {
	return s.stockLevelRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
