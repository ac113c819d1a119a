package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestApplyQuantityRederivesPercentDiscount(t *testing.T) {
	l := Line{Qty: 1, UnitPrice: dec("40")}
	l = Apply(l, FieldDiscountPercent, dec("25"))
	if !l.DiscountAmount.Equal(dec("10")) {
		t.Fatalf("discount amount = %s, want 10", l.DiscountAmount)
	}

	l = Apply(l, FieldQuantity, dec("3"))
	if !l.DiscountAmount.Equal(dec("30")) {
		t.Fatalf("discount amount after qty change = %s, want 30", l.DiscountAmount)
	}
	if !l.Total().Equal(dec("90")) {
		t.Fatalf("line total = %s, want 90", l.Total())
	}
}

func TestApplyUnitPriceRederivesPercentDiscount(t *testing.T) {
	l := Line{Qty: 2, UnitPrice: dec("10"), DiscountPercent: dec("50"), DiscountAmount: dec("10")}
	l = Apply(l, FieldUnitPrice, dec("30"))
	if !l.DiscountAmount.Equal(dec("30")) {
		t.Fatalf("discount amount = %s, want 30", l.DiscountAmount)
	}
}

func TestApplyPercentClamped(t *testing.T) {
	l := Line{Qty: 1, UnitPrice: dec("100")}
	l = Apply(l, FieldDiscountPercent, dec("150"))
	if !l.DiscountPercent.Equal(dec("100")) {
		t.Fatalf("percent = %s, want clamp to 100", l.DiscountPercent)
	}
	if !l.Total().IsZero() {
		t.Fatalf("line total = %s, want 0 at 100%%", l.Total())
	}

	l = Apply(l, FieldDiscountPercent, dec("-10"))
	if !l.DiscountPercent.IsZero() || !l.DiscountAmount.IsZero() {
		t.Fatalf("negative percent must clamp to zero, got pct=%s amount=%s", l.DiscountPercent, l.DiscountAmount)
	}
}

func TestApplyAmountCappedAtLineValue(t *testing.T) {
	l := Line{Qty: 1, UnitPrice: dec("10")}
	l = Apply(l, FieldDiscountAmount, dec("50"))
	if !l.DiscountAmount.Equal(dec("10")) {
		t.Fatalf("discount amount = %s, want cap at 10", l.DiscountAmount)
	}
	if !l.DiscountPercent.Equal(dec("100")) {
		t.Fatalf("derived percent = %s, want 100", l.DiscountPercent)
	}
}

func TestApplyAmountDerivesPercent(t *testing.T) {
	l := Line{Qty: 2, UnitPrice: dec("50")}
	l = Apply(l, FieldDiscountAmount, dec("25"))
	if !l.DiscountPercent.Equal(dec("25")) {
		t.Fatalf("derived percent = %s, want 25", l.DiscountPercent)
	}
}

func TestApplyAmountOnZeroValueLine(t *testing.T) {
	l := Line{Qty: 1, UnitPrice: decimal.Zero}
	l = Apply(l, FieldDiscountAmount, dec("5"))
	if !l.DiscountAmount.IsZero() {
		t.Fatalf("discount amount = %s, want 0 on a zero-value line", l.DiscountAmount)
	}
	if !l.DiscountPercent.IsZero() {
		t.Fatalf("percent = %s, no percentage derivable from a zero-value line", l.DiscountPercent)
	}
}

func TestApplyPriceDropCapsAmountOnlyDiscount(t *testing.T) {
	l := Line{Qty: 1, UnitPrice: dec("100"), DiscountAmount: dec("40")}
	l = Apply(l, FieldUnitPrice, dec("30"))
	if !l.DiscountAmount.Equal(dec("30")) {
		t.Fatalf("discount amount = %s, want cap at new line value 30", l.DiscountAmount)
	}
	if l.Total().IsNegative() {
		t.Fatalf("line total went negative: %s", l.Total())
	}
}

func TestApplyPercentRoundsAmountToCents(t *testing.T) {
	l := Line{Qty: 3, UnitPrice: dec("19.99")}
	l = Apply(l, FieldDiscountPercent, dec("7"))
	// 3 * 19.99 * 7% = 4.1979 -> 4.20
	if !l.DiscountAmount.Equal(dec("4.2")) {
		t.Fatalf("discount amount = %s, want 4.20", l.DiscountAmount)
	}
}

func TestApplyUnknownFieldIsNoop(t *testing.T) {
	l := Line{Qty: 2, UnitPrice: dec("5")}
	got := Apply(l, Field("color"), dec("1"))
	if got != l {
		t.Fatalf("unknown field mutated the line: %+v", got)
	}
}

func TestKnownField(t *testing.T) {
	for _, f := range []Field{FieldQuantity, FieldUnitPrice, FieldDiscountAmount, FieldDiscountPercent} {
		if !KnownField(f) {
			t.Fatalf("%s should be known", f)
		}
	}
	if KnownField(Field("lineTotal")) {
		t.Fatal("lineTotal is derived, not editable")
	}
}
