package persistence

import (
	"context"

	inventoryapp "github.com/retailpos/backend/internal/application/inventory"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/returns"
	"gorm.io/gorm"
)

// GormTransactionScope executes return lifecycle work inside a database
// transaction so the guarded status write and its inventory side effects
// commit or roll back together
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos inventoryapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides repositories bound to a transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) ReturnRepo() returns.ReturnRepository {
	return NewGormReturnRepository(r.tx)
}

func (r *gormTransactionalRepositories) SerialUnitRepo() inventory.SerialUnitRepository {
	return NewGormSerialUnitRepository(r.tx)
}

func (r *gormTransactionalRepositories) StockMovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) StockLevelRepo() inventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

// Ensure interface compliance
var _ inventoryapp.TransactionScope = (*GormTransactionScope)(nil)
var _ inventoryapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
