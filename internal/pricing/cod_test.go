package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

var testCODPolicy = CODPolicy{
	Carriers:   []string{"gls", "ppl"},
	Currencies: []string{"CZK", "EUR"},
}

func TestCollectOnDeliveryFollowsGrandTotal(t *testing.T) {
	lines := []Line{{Qty: 2, UnitPrice: dec("100")}}
	tax := TaxConfig{Enabled: true, Rate: dec("0.21")}

	totals := ComputeTotals(lines, OrderDiscount{}, tax, dec("10"), decimal.Zero)
	cod := testCODPolicy.CollectOnDelivery(totals, "CZK", "gls", "cod")
	if !cod.Active {
		t.Fatal("cod should be active for gls + cod")
	}
	if !cod.Amount.Equal(totals.GrandTotal.Round(2)) {
		t.Fatalf("cod amount = %s, want grand total %s", cod.Amount, totals.GrandTotal)
	}

	// Any edit that changes the grand total must be reflected on the next
	// derivation; the amount is never an independently stored field.
	totals = ComputeTotals(lines, OrderDiscount{}, tax, dec("10"), dec("5"))
	cod = testCODPolicy.CollectOnDelivery(totals, "CZK", "gls", "cod")
	if !cod.Amount.Equal(totals.GrandTotal.Round(2)) {
		t.Fatalf("cod amount = %s stale after adjustment edit, want %s", cod.Amount, totals.GrandTotal)
	}
}

func TestCollectOnDeliveryInactiveForOtherMethods(t *testing.T) {
	totals := ComputeTotals([]Line{{Qty: 1, UnitPrice: dec("10")}}, OrderDiscount{}, TaxConfig{}, decimal.Zero, decimal.Zero)
	if cod := testCODPolicy.CollectOnDelivery(totals, "CZK", "gls", "card"); cod.Active {
		t.Fatal("card payments never collect on delivery")
	}
	if cod := testCODPolicy.CollectOnDelivery(totals, "CZK", "dhl", "cod"); cod.Active {
		t.Fatal("dhl is not a cod carrier in this policy")
	}
}

func TestCollectOnDeliveryCurrencyFallback(t *testing.T) {
	totals := ComputeTotals([]Line{{Qty: 1, UnitPrice: dec("10")}}, OrderDiscount{}, TaxConfig{}, decimal.Zero, decimal.Zero)
	cod := testCODPolicy.CollectOnDelivery(totals, "USD", "ppl", "COD")
	if !cod.Active {
		t.Fatal("cod should be active regardless of currency")
	}
	if cod.Currency != "CZK" {
		t.Fatalf("currency = %s, want fallback CZK for unsupported USD", cod.Currency)
	}
}
