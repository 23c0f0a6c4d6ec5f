package sale

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Service encapsulates sale creation: line-item normalization, discount
// calculation, aggregate construction, and atomic persistence.
type Service struct {
	sales Repository
	now   func() time.Time
}

// NewService creates a sale Service backed by the given repository.
func NewService(sales Repository) *Service {
	return &Service{sales: sales, now: time.Now}
}

// CreateSale prices and persists an order for the given customer.
//
// The caller is responsible for validating references (the customer and all
// product codes must exist); CreateSale assumes they do. Line items are
// still checked defensively: empty orders fail with ErrEmptyItems and
// non-positive quantities or prices with InvalidLineItemError.
//
// Duplicate product lines are merged before pricing. When a merged quantity
// exceeds the per-product ceiling, the order is rejected with
// ErrQuantityLimitExceeded and nothing is built or persisted.
func (s *Service) CreateSale(ctx context.Context, customerID uuid.UUID, items []LineItem) (*Sale, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, &InvalidLineItemError{ProductCode: it.ProductCode, Reason: "quantity must be greater than 0"}
		}
		if !it.UnitPrice.IsPositive() {
			return nil, &InvalidLineItemError{ProductCode: it.ProductCode, Reason: "unit price must be greater than 0"}
		}
	}

	normalized := NormalizeItems(items)

	percent, err := DiscountFor(normalized)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	saleItems := make([]SaleItem, len(normalized))
	gross := decimal.Zero
	for i, it := range normalized {
		saleItems[i] = SaleItem{
			SaleID:      id,
			ProductCode: it.ProductCode,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
		gross = gross.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	gross = gross.Round(2)
	net := gross.Mul(hundred.Sub(decimal.NewFromInt(percent))).Div(hundred).Round(2)

	out := &Sale{
		ID:              id,
		CustomerID:      customerID,
		SaleDate:        s.now().UTC(),
		TotalGrossValue: gross,
		DiscountPercent: percent,
		TotalNetValue:   net,
		Cancelled:       false,
		Items:           saleItems,
	}

	if err := s.sales.Create(ctx, out); err != nil {
		return nil, err
	}

	return out, nil
}
