package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSerialUnitRepository implements inventory.SerialUnitRepository using GORM
type GormSerialUnitRepository struct {
	db *gorm.DB
}

// NewGormSerialUnitRepository creates a new GormSerialUnitRepository
func NewGormSerialUnitRepository(db *gorm.DB) *GormSerialUnitRepository {
	return &GormSerialUnitRepository{db: db}
}

// FindByProductAndSerial looks up a unit by its natural key
func (r *GormSerialUnitRepository) FindByProductAndSerial(ctx context.Context, productID uuid.UUID, serialNumber string) (*inventory.SerialUnit, error) {
	var unit inventory.SerialUnit
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND serial_number = ?", productID, serialNumber).
		First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &unit, nil
}

// Save persists a serialized unit
func (r *GormSerialUnitRepository) Save(ctx context.Context, unit *inventory.SerialUnit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

// UpdateStatusGuarded writes the new status only when the persisted status
// still equals expected. Zero rows affected reports (false, nil): the unit
// was touched by another writer or never held the expected status, and
// callers decide whether that is a skip or a failure.
func (r *GormSerialUnitRepository) UpdateStatusGuarded(ctx context.Context, unitID uuid.UUID, expected, next inventory.SerialStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&inventory.SerialUnit{}).
		Where("id = ? AND status = ?", unitID, expected).
		Updates(map[string]any{
			"status":     next,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Ensure GormSerialUnitRepository implements SerialUnitRepository
var _ inventory.SerialUnitRepository = (*GormSerialUnitRepository)(nil)
