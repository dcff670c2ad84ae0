package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/returns"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReturnRepository implements returns.ReturnRepository using GORM
type GormReturnRepository struct {
	db *gorm.DB
}

// NewGormReturnRepository creates a new GormReturnRepository
func NewGormReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// Create inserts the return header, its items, serial rows, and refund
// transactions in one transaction
func (r *GormReturnRepository) Create(ctx context.Context, ret *returns.Return) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Transactions").Create(ret).Error; err != nil {
			return err
		}
		for i := range ret.Items {
			ret.Items[i].ReturnID = ret.ID
			if err := tx.Omit("Serials").Create(&ret.Items[i]).Error; err != nil {
				return err
			}
			for j := range ret.Items[i].Serials {
				ret.Items[i].Serials[j].ReturnItemID = ret.Items[i].ID
				if err := tx.Create(&ret.Items[i].Serials[j]).Error; err != nil {
					return err
				}
			}
		}
		for i := range ret.Transactions {
			ret.Transactions[i].ReturnID = ret.ID
			if err := tx.Create(&ret.Transactions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID loads the full aggregate: items, serials, refund transactions
func (r *GormReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*returns.Return, error) {
	var ret returns.Return
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Serials").
		Preload("Transactions").
		First(&ret, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ret, nil
}

// FindByReturnNumber loads the full aggregate by its return number
func (r *GormReturnRepository) FindByReturnNumber(ctx context.Context, returnNumber string) (*returns.Return, error) {
	var ret returns.Return
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Serials").
		Preload("Transactions").
		Where("return_number = ?", returnNumber).
		First(&ret).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ret, nil
}

// FindAll lists returns with filtering, sorting, and pagination
func (r *GormReturnRepository) FindAll(ctx context.Context, filter shared.Filter) ([]returns.Return, error) {
	var results []returns.Return
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&returns.Return{}).Preload("Items"),
		filter,
	)
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// FindBySale lists returns raised against a sale, newest first
func (r *GormReturnRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]returns.Return, error) {
	var results []returns.Return
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("sale_id = ?", saleID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Count counts returns matching the filter (pagination ignored)
func (r *GormReturnRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&returns.Return{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts returns in a given status
func (r *GormReturnRepository) CountByStatus(ctx context.Context, status returns.ReturnStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&returns.Return{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateStatus performs the compare-and-set status transition: the write
// only applies when the persisted status still equals expected. Zero rows
// affected means another writer got there first, surfaced as
// shared.ErrConcurrencyConflict so the caller's transaction rolls back
// without side effects.
func (r *GormReturnRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next returns.ReturnStatus, update returns.StatusUpdate) error {
	fields := map[string]any{"status": next}
	for key, value := range update.Fields {
		fields[key] = value
	}

	result := r.db.WithContext(ctx).
		Model(&returns.Return{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish a lost race from a missing row
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&returns.Return{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}

	for i := range update.Transactions {
		if err := r.db.WithContext(ctx).Create(&update.Transactions[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// SumReturnedQuantityForSaleLine sums quantity_returned across all returns
// touching the sale line, excluding rejected and cancelled ones
func (r *GormReturnRepository) SumReturnedQuantityForSaleLine(ctx context.Context, saleLineID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&returns.ReturnItem{}).
		Select("SUM(return_items.quantity_returned)").
		Joins("JOIN returns ON returns.id = return_items.return_id").
		Where("return_items.sale_line_id = ?", saleLineID).
		Where("returns.status NOT IN ?", []string{
			string(returns.ReturnStatusRejected),
			string(returns.ReturnStatusCancelled),
		}).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// GenerateReturnNumber generates a unique return number.
// Format: RT-YYYY-NNNNN (e.g., RT-2026-00001)
func (r *GormReturnRepository) GenerateReturnNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("RT-%d-", year)

	var lastReturn returns.Return
	err := r.db.WithContext(ctx).
		Model(&returns.Return{}).
		Where("return_number LIKE ?", prefix+"%").
		Order("return_number DESC").
		First(&lastReturn).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastReturn.ReturnNumber != "" {
		parts := strings.Split(lastReturn.ReturnNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	returnNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := r.existsByReturnNumber(ctx, returnNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for attempts := 0; attempts < 100; attempts++ {
			nextNum++
			returnNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.existsByReturnNumber(ctx, returnNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return returnNumber, nil
}

func (r *GormReturnRepository) existsByReturnNumber(ctx context.Context, returnNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&returns.Return{}).
		Where("return_number = ?", returnNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormReturnRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ReturnSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormReturnRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("return_number ILIKE ? OR sale_number ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "sale_id":
			query = query.Where("sale_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		case "min_amount":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("return_amount >= ?", d)
			}
		case "max_amount":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("return_amount <= ?", d)
			}
		}
	}

	return query
}

// Ensure GormReturnRepository implements ReturnRepository
var _ returns.ReturnRepository = (*GormReturnRepository)(nil)
