package sale

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested sale does not exist.
	ErrNotFound = errors.New("sale not found")
	// ErrEmptyItems is returned when an order carries no line items.
	ErrEmptyItems = errors.New("items required")
	// ErrQuantityLimitExceeded is returned when a product's normalized
	// quantity exceeds the per-product ceiling. This is a declined order,
	// not a system fault: nothing is persisted.
	ErrQuantityLimitExceeded = errors.New("quantity limit exceeded")
)

// InvalidLineItemError indicates a line item with a non-positive quantity or
// unit price.
type InvalidLineItemError struct {
	ProductCode string
	Reason      string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("invalid line item for product %s: %s", e.ProductCode, e.Reason)
}
