package pricing

import "github.com/shopspring/decimal"

// SolveFlatDiscount derives the flat order discount needed to hit the
// desired grand total with every other input fixed. Because tax is charged
// on the discounted base, the closed form is
//
//	discount = subtotal - (target - shipping - adjustment) / (1 + rate)
//
// The result is clamped to [0, subtotal]: a target above the natural total
// solves to zero (the engine never invents a surcharge), and a target below
// the reachable minimum solves to the full subtotal. The returned value is
// rounded to 2 decimal places so repeated solve/recompute cycles settle
// instead of oscillating on floating-point noise.
//
// Applying the result means switching the order discount to DiscountFlat:
// a rate discount cannot deterministically hit an arbitrary absolute total.
func SolveFlatDiscount(lines []Line, tax TaxConfig, shipping, adjustment, target decimal.Decimal) decimal.Decimal {
	subtotal := Subtotal(lines)
	rate := decimal.Zero
	if tax.Enabled {
		rate = tax.Rate
	}
	base := target.Sub(shipping).Sub(adjustment).Div(decimal.NewFromInt(1).Add(rate))
	discount := subtotal.Sub(base)
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount.Round(2)
}
