package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrAlreadyExists is returned when the code or description of a new
	// product is already taken.
	ErrAlreadyExists = errors.New("product already exists")
)

// Product is a catalog item that sale items reference by code.
type Product struct {
	ID              uuid.UUID
	Code            string
	Description     string
	Category        string
	Image           string
	Price           decimal.Decimal
	QuantityInStock int
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetByCode(ctx context.Context, code string) (*Product, error)
	GetByCodes(ctx context.Context, codes []string) ([]Product, error)
	SearchByDescription(ctx context.Context, term string) ([]Product, error)
	List(ctx context.Context) ([]Product, error)
	Delete(ctx context.Context, code string) error
}

// Validate checks the product's field constraints: code 6-10 characters,
// description and category 3-50 characters, positive price, non-negative
// stock. Uniqueness of code and description is a separate pre-check against
// the repository.
func Validate(p *Product) error {
	if n := len(p.Code); n < 6 || n > 10 {
		return errors.New("code must be between 6 and 10 characters")
	}
	if n := len(p.Description); n < 3 || n > 50 {
		return errors.New("description must be between 3 and 50 characters")
	}
	if n := len(p.Category); n < 3 || n > 50 {
		return errors.New("category must be between 3 and 50 characters")
	}
	if !p.Price.IsPositive() {
		return errors.New("price must be greater than 0")
	}
	if p.QuantityInStock < 0 {
		return errors.New("quantity in stock must not be negative")
	}
	return nil
}
