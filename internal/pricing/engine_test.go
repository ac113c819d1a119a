package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeTotalsFlatDiscount(t *testing.T) {
	lines := []Line{{Qty: 2, UnitPrice: dec("100")}}
	totals := ComputeTotals(lines,
		OrderDiscount{Type: DiscountFlat, Value: dec("20")},
		TaxConfig{Enabled: true, Rate: dec("0.21")},
		dec("10"), decimal.Zero)

	if !totals.Subtotal.Equal(dec("200")) {
		t.Fatalf("subtotal = %s, want 200", totals.Subtotal)
	}
	if !totals.TaxableBase.Equal(dec("180")) {
		t.Fatalf("taxable base = %s, want 180", totals.TaxableBase)
	}
	if !totals.Tax.Equal(dec("37.8")) {
		t.Fatalf("tax = %s, want 37.80", totals.Tax)
	}
	if !totals.GrandTotal.Equal(dec("227.8")) {
		t.Fatalf("grand total = %s, want 227.80", totals.GrandTotal)
	}
}

func TestComputeTotalsRateDiscountMatchesFlat(t *testing.T) {
	lines := []Line{{Qty: 2, UnitPrice: dec("100")}}
	tax := TaxConfig{Enabled: true, Rate: dec("0.21")}

	rate := ComputeTotals(lines, OrderDiscount{Type: DiscountRate, Value: dec("10")}, tax, dec("10"), decimal.Zero)
	flat := ComputeTotals(lines, OrderDiscount{Type: DiscountFlat, Value: dec("20")}, tax, dec("10"), decimal.Zero)

	if !rate.Discount.Equal(dec("20")) {
		t.Fatalf("rate discount = %s, want 20", rate.Discount)
	}
	if !rate.GrandTotal.Equal(flat.GrandTotal) {
		t.Fatalf("grand totals differ: rate %s vs flat %s", rate.GrandTotal, flat.GrandTotal)
	}
}

func TestComputeTotalsIdempotent(t *testing.T) {
	lines := []Line{
		{Qty: 3, UnitPrice: dec("19.99"), DiscountAmount: dec("5")},
		{Qty: 1, UnitPrice: dec("120.50")},
	}
	disc := OrderDiscount{Type: DiscountRate, Value: dec("7.5")}
	tax := TaxConfig{Enabled: true, Rate: dec("0.19")}

	first := ComputeTotals(lines, disc, tax, dec("4.90"), dec("-0.02"))
	second := ComputeTotals(lines, disc, tax, dec("4.90"), dec("-0.02"))

	if !first.GrandTotal.Equal(second.GrandTotal) || !first.Tax.Equal(second.Tax) {
		t.Fatalf("recompute changed totals: %+v vs %+v", first, second)
	}
}

func TestComputeTotalsTaxableBaseFlooredAtZero(t *testing.T) {
	lines := []Line{{Qty: 2, UnitPrice: dec("100")}}
	totals := ComputeTotals(lines,
		OrderDiscount{Type: DiscountFlat, Value: dec("500")},
		TaxConfig{Enabled: true, Rate: dec("0.21")},
		dec("10"), dec("2"))

	if !totals.TaxableBase.IsZero() {
		t.Fatalf("taxable base = %s, want 0", totals.TaxableBase)
	}
	if !totals.Tax.IsZero() {
		t.Fatalf("tax = %s, want 0", totals.Tax)
	}
	if !totals.GrandTotal.Equal(dec("12")) {
		t.Fatalf("grand total = %s, want shipping+adjustment = 12", totals.GrandTotal)
	}
}

func TestComputeTotalsTaxDisabled(t *testing.T) {
	lines := []Line{{Qty: 1, UnitPrice: dec("50")}}
	totals := ComputeTotals(lines, OrderDiscount{}, TaxConfig{Enabled: false, Rate: dec("0.21")}, decimal.Zero, decimal.Zero)
	if !totals.Tax.IsZero() {
		t.Fatalf("tax = %s, want 0 when disabled", totals.Tax)
	}
	if !totals.GrandTotal.Equal(dec("50")) {
		t.Fatalf("grand total = %s, want 50", totals.GrandTotal)
	}
}

func TestComputeTotalsNegativeAdjustment(t *testing.T) {
	lines := []Line{{Qty: 1, UnitPrice: dec("10.03")}}
	totals := ComputeTotals(lines, OrderDiscount{}, TaxConfig{}, decimal.Zero, dec("-0.03"))
	if !totals.GrandTotal.Equal(dec("10")) {
		t.Fatalf("grand total = %s, want 10", totals.GrandTotal)
	}
}

func TestComputeTotalsSkipsNonPositiveQty(t *testing.T) {
	lines := []Line{
		{Qty: 0, UnitPrice: dec("99")},
		{Qty: 2, UnitPrice: dec("5")},
	}
	totals := ComputeTotals(lines, OrderDiscount{}, TaxConfig{}, decimal.Zero, decimal.Zero)
	if !totals.Subtotal.Equal(dec("10")) {
		t.Fatalf("subtotal = %s, want 10", totals.Subtotal)
	}
}

func TestOrderDiscountNegativeValueDegradesToZero(t *testing.T) {
	d := OrderDiscount{Type: DiscountFlat, Value: dec("-5")}
	if !d.Amount(dec("100")).IsZero() {
		t.Fatal("negative flat discount should resolve to zero")
	}
}

func TestTaxConfigValidate(t *testing.T) {
	if err := (TaxConfig{Rate: dec("0.21")}).Validate(); err != nil {
		t.Fatalf("valid rate rejected: %v", err)
	}
	if err := (TaxConfig{Rate: dec("21")}).Validate(); err == nil {
		t.Fatal("rate 21 (a percentage, not a fraction) must be rejected")
	}
	if err := (TaxConfig{Rate: dec("-0.1")}).Validate(); err == nil {
		t.Fatal("negative rate must be rejected")
	}
}

func TestLineTotalNeverNegative(t *testing.T) {
	l := Line{Qty: 1, UnitPrice: dec("10"), DiscountAmount: dec("50")}
	if !l.Total().IsZero() {
		t.Fatalf("line total = %s, want 0", l.Total())
	}
}
