package discount

import "testing"

func TestComputePercentage(t *testing.T) {
	rule := Rule{Kind: KindPercentage, Percentage: dec("15")}
	got := Compute(rule, dec("40"), 2)
	if !got.Amount.Equal(dec("12")) {
		t.Fatalf("amount = %s, want 12", got.Amount)
	}
	if got.Label != "15% off" {
		t.Fatalf("label = %q, want %q", got.Label, "15% off")
	}
}

func TestComputeFixedCappedAtLineValue(t *testing.T) {
	rule := Rule{Kind: KindFixed, FixedAmount: dec("50")}
	got := Compute(rule, dec("10"), 1)
	if !got.Amount.Equal(dec("10")) {
		t.Fatalf("amount = %s, want cap at line value 10", got.Amount)
	}
	if got.Label != "50 off" {
		t.Fatalf("label = %q, want %q", got.Label, "50 off")
	}
}

func TestComputeBuyXGetYNoProration(t *testing.T) {
	rule := Rule{Kind: KindBuyXGetY, BuyQty: 5, GetQty: 1}

	// 9 units is one complete set of 6 plus a partial: exactly one free unit.
	got := Compute(rule, dec("20"), 9)
	if !got.Amount.Equal(dec("20")) {
		t.Fatalf("qty 9: amount = %s, want 20 (one free unit)", got.Amount)
	}
	if got.Label != "Buy 5 Get 1" {
		t.Fatalf("label = %q, want %q", got.Label, "Buy 5 Get 1")
	}

	got = Compute(rule, dec("20"), 12)
	if !got.Amount.Equal(dec("40")) {
		t.Fatalf("qty 12: amount = %s, want 40 (two free units)", got.Amount)
	}

	// Below one complete set nothing is earned.
	got = Compute(rule, dec("20"), 5)
	if !got.Amount.IsZero() {
		t.Fatalf("qty 5: amount = %s, want 0", got.Amount)
	}
}

func TestComputeUnknownKindIsSilentNoop(t *testing.T) {
	got := Compute(Rule{Kind: Kind("loyalty_points")}, dec("10"), 3)
	if !got.Amount.IsZero() || got.Label != "" {
		t.Fatalf("unknown kind must be a zero-effect no-op, got %+v", got)
	}
}

func TestComputeDegradesOnMalformedInputs(t *testing.T) {
	if got := Compute(Rule{Kind: KindPercentage, Percentage: dec("120")}, dec("10"), 1); !got.Amount.IsZero() {
		t.Fatalf("percentage above 100 must degrade to zero, got %s", got.Amount)
	}
	if got := Compute(Rule{Kind: KindFixed, FixedAmount: dec("-3")}, dec("10"), 1); !got.Amount.IsZero() {
		t.Fatalf("negative fixed amount must degrade to zero, got %s", got.Amount)
	}
	if got := Compute(Rule{Kind: KindBuyXGetY, BuyQty: 0, GetQty: 1}, dec("10"), 4); !got.Amount.IsZero() {
		t.Fatalf("zero buy quantity must degrade to zero, got %s", got.Amount)
	}
	if got := Compute(Rule{Kind: KindPercentage, Percentage: dec("10")}, dec("10"), 0); !got.Amount.IsZero() {
		t.Fatalf("zero quantity earns nothing, got %s", got.Amount)
	}
}

func TestComputePercentageRoundsToCents(t *testing.T) {
	rule := Rule{Kind: KindPercentage, Percentage: dec("7")}
	got := Compute(rule, dec("19.99"), 3)
	// 59.97 * 7% = 4.1979 -> 4.20
	if !got.Amount.Equal(dec("4.2")) {
		t.Fatalf("amount = %s, want 4.20", got.Amount)
	}
}
