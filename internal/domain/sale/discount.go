package sale

// Quantity tier boundaries. A single tier applies to the whole order, chosen
// from the largest normalized per-product quantity: quantities above
// maxQuantityPerProduct reject the order, quantities above upperTierFloor
// earn 20%, quantities above lowerTierFloor earn 10%, anything else earns
// nothing. Upper bounds are closed: exactly 10 lands in the 10% tier and
// exactly 20 in the 20% tier.
const (
	maxQuantityPerProduct = 20
	upperTierFloor        = 10
	lowerTierFloor        = 4

	upperTierPercent = 20
	lowerTierPercent = 10
)

// DiscountFor maps normalized line items to the discount percentage for the
// order. It returns ErrQuantityLimitExceeded when any product's quantity is
// above maxQuantityPerProduct. Pure function: the result depends only on the
// quantities in items.
func DiscountFor(items []LineItem) (int64, error) {
	maxQty := 0
	for _, it := range items {
		if it.Quantity > maxQty {
			maxQty = it.Quantity
		}
	}

	switch {
	case maxQty > maxQuantityPerProduct:
		return 0, ErrQuantityLimitExceeded
	case maxQty > upperTierFloor:
		return upperTierPercent, nil
	case maxQty > lowerTierFloor:
		return lowerTierPercent, nil
	default:
		return 0, nil
	}
}
