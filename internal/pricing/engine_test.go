package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/UIUC-Hort-Club/PlantPass/internal/discount"
	"github.com/UIUC-Hort-Club/PlantPass/internal/pricing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSubtotal(t *testing.T) {
	subtotal := pricing.Subtotal([]pricing.Item{
		{Qty: 2, UnitPrice: dec("7.25")},
		{Qty: 1, UnitPrice: dec("5.50")},
	})
	require.True(t, subtotal.Equal(dec("20")), "got %s", subtotal)
}

func TestSubtotalSkipsNonPositiveQuantities(t *testing.T) {
	subtotal := pricing.Subtotal([]pricing.Item{
		{Qty: 0, UnitPrice: dec("9.99")},
		{Qty: 3, UnitPrice: dec("2")},
	})
	require.True(t, subtotal.Equal(dec("6")))
}

func TestComputeReceipt(t *testing.T) {
	receipt := pricing.Compute(dec("20"), []discount.Applied{
		{Name: "member", Kind: discount.KindPercent, Value: dec("10"), AmountOff: dec("2")},
	}, dec("2"))

	require.True(t, receipt.Subtotal.Equal(dec("20")))
	require.True(t, receipt.Discount.Equal(dec("4")))
	require.True(t, receipt.Total.Equal(dec("16")))
}

func TestComputeFloorsAtZero(t *testing.T) {
	receipt := pricing.Compute(dec("10"), []discount.Applied{
		{Name: "opening", Kind: discount.KindFixed, Value: dec("8"), AmountOff: dec("8")},
	}, dec("25"))

	require.True(t, receipt.Discount.Equal(dec("33")), "deductions are reported in full")
	require.True(t, receipt.Total.IsZero(), "total never goes negative")
}

func TestComputeIsExact(t *testing.T) {
	// 0.1 + 0.2 style inputs stay exact under decimal arithmetic.
	receipt := pricing.Compute(dec("0.3"), nil, dec("0.1"))
	require.True(t, receipt.Total.Equal(dec("0.2")), "got %s", receipt.Total)
}
