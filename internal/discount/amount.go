package discount

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Applied is the resolved effect of a rule on a single line.
type Applied struct {
	Amount decimal.Decimal
	Label  string
}

// Compute resolves the discount amount for a line with the given unit price
// and quantity.
//
//   - percentage: unitPrice * qty * percentage / 100, rounded to cents.
//   - fixed: the configured amount, capped at the line value so the
//     remainder can never go negative.
//   - buy_x_get_y: only complete (buy+get) sets earn free units; partial
//     sets earn nothing, no proration.
//
// Unknown or malformed kinds yield a zero amount and an empty label rather
// than an error, keeping the cart usable on bad catalog data.
func Compute(r Rule, unitPrice decimal.Decimal, qty int) Applied {
	if qty <= 0 || unitPrice.IsNegative() {
		return Applied{Amount: decimal.Zero}
	}
	lineValue := unitPrice.Mul(decimal.NewFromInt(int64(qty)))

	switch r.Kind {
	case KindPercentage:
		if r.Percentage.IsNegative() || r.Percentage.GreaterThan(hundred) {
			return Applied{Amount: decimal.Zero}
		}
		amount := lineValue.Mul(r.Percentage).Div(hundred).Round(2)
		return Applied{Amount: amount, Label: fmt.Sprintf("%s%% off", r.Percentage)}
	case KindFixed:
		amount := r.FixedAmount
		if amount.IsNegative() {
			return Applied{Amount: decimal.Zero}
		}
		if amount.GreaterThan(lineValue) {
			amount = lineValue
		}
		return Applied{Amount: amount, Label: fmt.Sprintf("%s off", r.FixedAmount)}
	case KindBuyXGetY:
		if r.BuyQty <= 0 || r.GetQty <= 0 {
			return Applied{Amount: decimal.Zero}
		}
		completeSets := qty / (r.BuyQty + r.GetQty)
		freeUnits := completeSets * r.GetQty
		amount := unitPrice.Mul(decimal.NewFromInt(int64(freeUnits)))
		return Applied{Amount: amount, Label: fmt.Sprintf("Buy %d Get %d", r.BuyQty, r.GetQty)}
	}
	return Applied{Amount: decimal.Zero}
}
