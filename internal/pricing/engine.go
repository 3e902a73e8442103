package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/UIUC-Hort-Club/PlantPass/internal/discount"
)

// Item describes a line item used for subtotal calculation.
type Item struct {
	Qty       int64
	UnitPrice decimal.Decimal
}

// Receipt aggregates the computed totals of a transaction.
type Receipt struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Subtotal sums quantity times unit price across all items.
func Subtotal(items []Item) decimal.Decimal {
	subtotal := decimal.Zero
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Qty)))
	}
	return subtotal
}

// Compute derives the receipt from a subtotal, resolved discounts and a flat
// voucher deduction. The total is floored at zero; it never goes negative even
// when deductions exceed the subtotal. All arithmetic is exact decimal, so
// recomputing the receipt from the same inputs always reproduces it.
func Compute(subtotal decimal.Decimal, discounts []discount.Applied, voucher decimal.Decimal) Receipt {
	off := voucher
	for _, d := range discounts {
		off = off.Add(d.AmountOff)
	}
	total := subtotal.Sub(off)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Receipt{
		Subtotal: subtotal,
		Discount: off,
		Total:    total,
	}
}
