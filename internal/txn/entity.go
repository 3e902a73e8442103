package txn

import (
	"github.com/shopspring/decimal"

	"github.com/UIUC-Hort-Club/PlantPass/internal/common"
	"github.com/UIUC-Hort-Club/PlantPass/internal/discount"
	"github.com/UIUC-Hort-Club/PlantPass/internal/pricing"
)

// LineItem is a purchased product line. Name and UnitPrice are frozen when the
// transaction is created; only Quantity may be revised afterwards.
type LineItem struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Payment tracks how and whether a transaction was settled.
type Payment struct {
	Method string `json:"method"`
	Paid   bool   `json:"paid"`
}

// Transaction is the persisted record of a sale. Unit prices and discount
// terms are copied onto it at creation and never re-read from any catalog, so
// the record always reflects exactly what was charged at the till.
type Transaction struct {
	PurchaseID string             `json:"purchase_id"`
	Timestamp  int64              `json:"timestamp"`
	Items      []LineItem         `json:"items"`
	Discounts  []discount.Applied `json:"discounts"`
	Voucher    decimal.Decimal    `json:"voucher"`
	Payment    Payment            `json:"payment"`
	Receipt    pricing.Receipt    `json:"receipt"`
}

// Cart is the raw input of a sale before resolution. Its discounts are still
// unresolved selections; constructing a Transaction from it is the only path
// that turns selections into applied discounts.
type Cart struct {
	Timestamp int64                `json:"timestamp"`
	Items     []LineItem           `json:"items" validate:"required,min=1,dive"`
	Discounts []discount.Selection `json:"discounts"`
	Voucher   decimal.Decimal      `json:"voucher"`
}

// Update is a partial revision of a stored transaction. Nil fields are left
// untouched.
type Update struct {
	Items     []LineItem           `json:"items,omitempty"`
	Discounts []discount.Selection `json:"discounts,omitempty"`
	Voucher   *decimal.Decimal     `json:"voucher,omitempty"`
	Payment   *PaymentPatch        `json:"payment,omitempty"`
}

// PaymentPatch merges field-by-field into the stored payment.
type PaymentPatch struct {
	Method *string `json:"method,omitempty"`
	Paid   *bool   `json:"paid,omitempty"`
}

// New builds a transaction from a raw cart: items and voucher are copied
// verbatim, discounts are resolved against the cart's own subtotal and the
// receipt is computed. Payment starts unpaid. The purchase id must already be
// allocated and the timestamp fixed by the caller.
func New(cart Cart, purchaseID string, timestamp int64) (Transaction, error) {
	if len(cart.Items) == 0 {
		return Transaction{}, common.ValidationError("cart has no items", map[string]any{"field": "items"})
	}
	if err := validateItems(cart.Items); err != nil {
		return Transaction{}, err
	}
	if cart.Voucher.IsNegative() {
		return Transaction{}, common.ValidationError("voucher must not be negative", map[string]any{"field": "voucher"})
	}

	t := Transaction{
		PurchaseID: purchaseID,
		Timestamp:  timestamp,
		Items:      append([]LineItem(nil), cart.Items...),
		Voucher:    cart.Voucher,
		Payment:    Payment{Method: "", Paid: false},
	}

	resolved, err := discount.Resolve(t.Subtotal(), cart.Discounts)
	if err != nil {
		return Transaction{}, common.ValidationError(err.Error(), map[string]any{"field": "discounts"})
	}
	t.Discounts = resolved
	t.Receipt = t.Recompute()
	return t, nil
}

// ApplyUpdate revises the transaction in place while preserving frozen terms:
// matched SKUs keep their stored name and unit price, matched discount names
// keep their stored kind and value. The receipt is recomputed whenever items,
// discounts or the voucher change so it can never drift from its inputs.
func (t *Transaction) ApplyUpdate(u Update) error {
	repriced := false

	if u.Items != nil {
		if err := validateItems(u.Items); err != nil {
			return err
		}
		t.Items = mergeItems(t.Items, u.Items)
		t.reresolveDiscounts()
		repriced = true
	}

	if u.Discounts != nil {
		merged := make([]discount.Selection, 0, len(u.Discounts))
		for _, in := range u.Discounts {
			if existing, ok := t.findDiscount(in.Name); ok {
				merged = append(merged, discount.Selection{
					Name:     existing.Name,
					Kind:     existing.Kind,
					Value:    existing.Value,
					Selected: in.Selected,
				})
			} else {
				merged = append(merged, in)
			}
		}
		resolved, err := discount.Resolve(t.Subtotal(), merged)
		if err != nil {
			return common.ValidationError(err.Error(), map[string]any{"field": "discounts"})
		}
		t.Discounts = resolved
		repriced = true
	}

	if u.Voucher != nil {
		if u.Voucher.IsNegative() {
			return common.ValidationError("voucher must not be negative", map[string]any{"field": "voucher"})
		}
		t.Voucher = *u.Voucher
		repriced = true
	}

	if u.Payment != nil {
		if u.Payment.Method != nil {
			t.Payment.Method = *u.Payment.Method
		}
		if u.Payment.Paid != nil {
			t.Payment.Paid = *u.Payment.Paid
		}
	}

	if repriced {
		t.Receipt = t.Recompute()
	}
	return nil
}

// Subtotal derives the pre-discount sum from the stored line items.
func (t Transaction) Subtotal() decimal.Decimal {
	items := make([]pricing.Item, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, pricing.Item{Qty: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return pricing.Subtotal(items)
}

// TotalQuantity sums units across all line items.
func (t Transaction) TotalQuantity() int64 {
	var total int64
	for _, it := range t.Items {
		total += it.Quantity
	}
	return total
}

// Recompute re-derives the receipt from the transaction's own items, discounts
// and voucher. For a consistent record it reproduces the stored receipt
// exactly.
func (t Transaction) Recompute() pricing.Receipt {
	return pricing.Compute(t.Subtotal(), t.Discounts, t.Voucher)
}

func (t Transaction) findDiscount(name string) (discount.Applied, bool) {
	for _, d := range t.Discounts {
		if d.Name == name {
			return d, true
		}
	}
	return discount.Applied{}, false
}

// reresolveDiscounts recomputes percent amounts after the subtotal moved.
// Fixed amounts and unselected discounts are untouched.
func (t *Transaction) reresolveDiscounts() {
	subtotal := t.Subtotal()
	for i, d := range t.Discounts {
		if d.Kind != discount.KindPercent || !d.AmountOff.IsPositive() {
			continue
		}
		amount, err := discount.Compute(subtotal, discount.Selection{
			Name:     d.Name,
			Kind:     d.Kind,
			Value:    d.Value,
			Selected: true,
		})
		if err != nil {
			continue
		}
		t.Discounts[i].AmountOff = amount
	}
}

// mergeItems applies incoming lines over stored ones: a matched SKU keeps the
// stored name and unit price and adopts only the new quantity; unmatched SKUs
// are appended verbatim as new lines.
func mergeItems(stored, incoming []LineItem) []LineItem {
	merged := make([]LineItem, 0, len(incoming))
	for _, in := range incoming {
		replaced := false
		for _, existing := range stored {
			if existing.SKU == in.SKU {
				merged = append(merged, LineItem{
					SKU:       existing.SKU,
					Name:      existing.Name,
					Quantity:  in.Quantity,
					UnitPrice: existing.UnitPrice,
				})
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, in)
		}
	}
	return merged
}

func validateItems(items []LineItem) error {
	for _, it := range items {
		if it.SKU == "" {
			return common.ValidationError("line item is missing a sku", map[string]any{"field": "items.sku"})
		}
		if it.Quantity < 0 {
			return common.ValidationError("quantity must not be negative", map[string]any{"field": "items.quantity", "sku": it.SKU})
		}
		if it.UnitPrice.IsNegative() {
			return common.ValidationError("unit price must not be negative", map[string]any{"field": "items.unit_price", "sku": it.SKU})
		}
	}
	return nil
}
