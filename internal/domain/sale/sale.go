package sale

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is a raw order line as submitted by the caller. The same product
// code may appear on several lines of one order.
type LineItem struct {
	ProductCode string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// SaleItem is a persisted line of a sale. Keyed by (SaleID, ProductCode);
// the product code is a reference into the catalog, not ownership.
type SaleItem struct {
	SaleID      uuid.UUID
	ProductCode string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Sale is the order aggregate. It exclusively owns its items: they are
// created and deleted together with the header.
type Sale struct {
	ID              uuid.UUID
	CustomerID      uuid.UUID
	SaleDate        time.Time
	TotalGrossValue decimal.Decimal
	DiscountPercent int64
	TotalNetValue   decimal.Decimal
	Cancelled       bool
	Items           []SaleItem
}

// Repository defines persistence operations for sales. Create and Delete
// apply the header and its items as one atomic unit.
type Repository interface {
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	List(ctx context.Context) ([]Sale, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetCancelled(ctx context.Context, id uuid.UUID, cancelled bool) error
}
