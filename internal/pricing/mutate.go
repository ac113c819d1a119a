package pricing

import "github.com/shopspring/decimal"

// Field names an editable line attribute.
type Field string

const (
	FieldQuantity        Field = "quantity"
	FieldUnitPrice       Field = "unitPrice"
	FieldDiscountAmount  Field = "discountAmount"
	FieldDiscountPercent Field = "discountPercent"
)

// KnownField reports whether f is one of the editable line fields.
func KnownField(f Field) bool {
	switch f {
	case FieldQuantity, FieldUnitPrice, FieldDiscountAmount, FieldDiscountPercent:
		return true
	}
	return false
}

// Apply mutates a single line field and re-derives the dependent discount
// fields so nothing is left stale:
//
//   - quantity / unit price edits re-derive the discount amount from the
//     percentage when one is set, since the percentage is the source of truth;
//   - a percentage edit is clamped to [0, 100] and re-derives the amount;
//   - an amount edit is clamped to the line value and derives the percentage
//     when the line value is positive (no percentage derivable otherwise).
//
// Unknown fields leave the line untouched. Apply never fails: out-of-range
// values are clamped, not rejected, because the line is user-editable draft
// state.
func Apply(l Line, f Field, value decimal.Decimal) Line {
	switch f {
	case FieldQuantity:
		qty := int(value.IntPart())
		if qty < 1 {
			qty = 1
		}
		l.Qty = qty
		l = rederiveFromPercent(l)
	case FieldUnitPrice:
		if value.IsNegative() {
			value = decimal.Zero
		}
		l.UnitPrice = value
		l = rederiveFromPercent(l)
	case FieldDiscountPercent:
		l.DiscountPercent = clampPercent(value)
		l.DiscountAmount = percentAmount(l)
	case FieldDiscountAmount:
		lineValue := l.Value()
		if value.IsNegative() {
			value = decimal.Zero
		}
		if value.GreaterThan(lineValue) {
			value = lineValue
		}
		l.DiscountAmount = value
		if lineValue.IsPositive() {
			l.DiscountPercent = value.Div(lineValue).Mul(hundred)
		} else {
			l.DiscountPercent = decimal.Zero
		}
	}
	return l
}

func rederiveFromPercent(l Line) Line {
	if l.DiscountPercent.IsPositive() {
		l.DiscountAmount = percentAmount(l)
		return l
	}
	// Amount-only discounts still may not exceed the new line value.
	if l.DiscountAmount.GreaterThan(l.Value()) {
		l.DiscountAmount = l.Value()
	}
	return l
}

func percentAmount(l Line) decimal.Decimal {
	return l.Value().Mul(l.DiscountPercent).Div(hundred).Round(2)
}

func clampPercent(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}
