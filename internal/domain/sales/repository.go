package sales

import (
	"context"

	"github.com/google/uuid"
)

// SaleReader provides read-only access to sales for return validation.
// The selling context owns the write side; the return engine never mutates sales.
type SaleReader interface {
	// FindByID loads a sale with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	// FindLine loads a single sale line, verifying it belongs to the given sale
	FindLine(ctx context.Context, saleID, lineID uuid.UUID) (*SaleLine, error)
}
