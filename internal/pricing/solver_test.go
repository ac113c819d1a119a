package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSolveFlatDiscountRoundTrip(t *testing.T) {
	lines := []Line{
		{Qty: 2, UnitPrice: dec("100")},
		{Qty: 1, UnitPrice: dec("49.95")},
	}
	tax := TaxConfig{Enabled: true, Rate: dec("0.21")}
	shipping := dec("10")
	adjustment := dec("1.50")
	tolerance := dec("0.01")

	for _, target := range []string{"250", "199.99", "302.44", "120.31"} {
		want := dec(target)
		discount := SolveFlatDiscount(lines, tax, shipping, adjustment, want)
		totals := ComputeTotals(lines, OrderDiscount{Type: DiscountFlat, Value: discount}, tax, shipping, adjustment)
		diff := totals.GrandTotal.Sub(want).Abs()
		if diff.GreaterThan(tolerance) {
			t.Fatalf("target %s: solved discount %s yields grand total %s (off by %s)", target, discount, totals.GrandTotal, diff)
		}
	}
}

func TestSolveFlatDiscountClampsToZeroAboveNaturalTotal(t *testing.T) {
	lines := []Line{{Qty: 2, UnitPrice: dec("100")}}
	tax := TaxConfig{Enabled: true, Rate: dec("0.21")}

	natural := ComputeTotals(lines, OrderDiscount{}, tax, dec("10"), decimal.Zero)
	target := natural.GrandTotal.Add(dec("50"))

	discount := SolveFlatDiscount(lines, tax, dec("10"), decimal.Zero, target)
	if !discount.IsZero() {
		t.Fatalf("discount = %s, want 0 for an unreachable target", discount)
	}
	totals := ComputeTotals(lines, OrderDiscount{Type: DiscountFlat, Value: discount}, tax, dec("10"), decimal.Zero)
	if !totals.GrandTotal.Equal(natural.GrandTotal) {
		t.Fatalf("grand total = %s, want natural total %s", totals.GrandTotal, natural.GrandTotal)
	}
}

func TestSolveFlatDiscountClampsToSubtotalBelowMinimum(t *testing.T) {
	lines := []Line{{Qty: 1, UnitPrice: dec("100")}}
	discount := SolveFlatDiscount(lines, TaxConfig{}, dec("10"), decimal.Zero, dec("2"))
	if !discount.Equal(dec("100")) {
		t.Fatalf("discount = %s, want full subtotal 100", discount)
	}
}

func TestSolveFlatDiscountNoTax(t *testing.T) {
	lines := []Line{{Qty: 2, UnitPrice: dec("100")}}
	discount := SolveFlatDiscount(lines, TaxConfig{}, dec("10"), decimal.Zero, dec("190"))
	if !discount.Equal(dec("20")) {
		t.Fatalf("discount = %s, want 20", discount)
	}
}
