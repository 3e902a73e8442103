package discount

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Discount kinds supported by the resolution engine.
const (
	KindPercent = "percent"
	KindFixed   = "fixed"
)

// ErrUnknownKind is returned when a candidate carries an unrecognised kind.
type ErrUnknownKind struct {
	Name string
	Kind string
}

func (e ErrUnknownKind) Error() string {
	return fmt.Sprintf("discount %q has unknown kind %q", e.Name, e.Kind)
}

// Selection is a raw discount choice as submitted with a cart. Value is a
// percentage for kind "percent" and a currency amount for kind "fixed".
type Selection struct {
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Value    decimal.Decimal `json:"value"`
	Selected bool            `json:"selected"`
}

// Applied is a discount whose terms were resolved against a subtotal and
// frozen onto the transaction record. Value is copied at resolution time and
// never re-read from the discount catalog, so later catalog edits cannot
// change what was charged.
type Applied struct {
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Value     decimal.Decimal `json:"value"`
	AmountOff decimal.Decimal `json:"amount_off"`
}

// Selection reverses resolution back into a raw choice, treating a positive
// amount off as selected.
func (a Applied) Selection() Selection {
	return Selection{Name: a.Name, Kind: a.Kind, Value: a.Value, Selected: a.AmountOff.IsPositive()}
}

var hundred = decimal.NewFromInt(100)

// Resolve converts candidate selections into applied discounts. Each candidate
// is resolved independently against the original subtotal; percent discounts
// never compound on top of one another.
func Resolve(subtotal decimal.Decimal, candidates []Selection) ([]Applied, error) {
	applied := make([]Applied, 0, len(candidates))
	for _, c := range candidates {
		amount, err := Compute(subtotal, c)
		if err != nil {
			return nil, err
		}
		applied = append(applied, Applied{
			Name:      c.Name,
			Kind:      c.Kind,
			Value:     c.Value,
			AmountOff: amount,
		})
	}
	return applied, nil
}

// Compute determines the currency amount a single selection takes off the
// subtotal. Unselected candidates resolve to zero regardless of kind.
func Compute(subtotal decimal.Decimal, c Selection) (decimal.Decimal, error) {
	switch c.Kind {
	case KindPercent, KindFixed:
	default:
		return decimal.Zero, ErrUnknownKind{Name: c.Name, Kind: c.Kind}
	}
	if !c.Selected {
		return decimal.Zero, nil
	}
	if c.Kind == KindFixed {
		if c.Value.IsNegative() {
			return decimal.Zero, nil
		}
		return c.Value, nil
	}
	return subtotal.Mul(c.Value).Div(hundred), nil
}
