package sale

import "sort"

// NormalizeItems merges duplicate product lines of one order into a single
// line per product code. Quantities are summed per code; the unit price is
// taken from the first occurrence of the code in the input. The result is
// stable-sorted by unit price descending, so lines with equal prices keep
// their first-occurrence order.
//
// The total quantity per product code is preserved: summing quantities over
// the output yields the same per-code totals as the input.
func NormalizeItems(items []LineItem) []LineItem {
	byCode := make(map[string]int, len(items))
	out := make([]LineItem, 0, len(items))

	for _, it := range items {
		if i, ok := byCode[it.ProductCode]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		byCode[it.ProductCode] = len(out)
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UnitPrice.GreaterThan(out[j].UnitPrice)
	})

	return out
}
