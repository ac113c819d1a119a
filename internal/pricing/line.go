package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Line is one row of an order draft: a product, variant, bundle or service
// with a quantity, a unit price and an optional line-level discount. Both the
// absolute discount amount and the percentage are carried; once a percentage
// is set it acts as the source of truth and the amount follows it.
type Line struct {
	Qty             int
	UnitPrice       decimal.Decimal
	DiscountAmount  decimal.Decimal
	DiscountPercent decimal.Decimal
}

// Value returns the undiscounted line value (unit price times quantity).
func (l Line) Value() decimal.Decimal {
	if l.Qty <= 0 {
		return decimal.Zero
	}
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// Total returns the line total after the line discount. The discount is
// capped at the line value so the total never goes negative.
func (l Line) Total() decimal.Decimal {
	value := l.Value()
	discount := l.DiscountAmount
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(value) {
		discount = value
	}
	return value.Sub(discount)
}

// Subtotal sums line totals across all lines. Lines with a non-positive
// quantity do not contribute.
func Subtotal(lines []Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Qty <= 0 {
			continue
		}
		subtotal = subtotal.Add(l.Total())
	}
	return subtotal
}
