package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DiscountType selects how an order-level discount value is interpreted.
type DiscountType string

const (
	// DiscountNone means no order-level discount is applied.
	DiscountNone DiscountType = ""
	// DiscountFlat deducts an absolute amount from the subtotal.
	DiscountFlat DiscountType = "flat"
	// DiscountRate deducts a percentage of the subtotal.
	DiscountRate DiscountType = "rate"
)

// OrderDiscount is the order-level discount configuration.
type OrderDiscount struct {
	Type  DiscountType
	Value decimal.Decimal
}

// Amount resolves the discount to an absolute deduction for the given
// subtotal. Negative configuration values degrade to zero.
func (d OrderDiscount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch d.Type {
	case DiscountFlat:
		amount = d.Value
	case DiscountRate:
		amount = subtotal.Mul(d.Value).Div(hundred)
	default:
		return decimal.Zero
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// TaxConfig carries the tax rate as a fraction in [0, 1]. Callers holding a
// UI-style percentage must divide by 100 before building a TaxConfig.
type TaxConfig struct {
	Enabled bool
	Rate    decimal.Decimal
}

// Validate rejects rates outside [0, 1]. The engine itself never throws;
// this is the boundary check callers are expected to run.
func (t TaxConfig) Validate() error {
	if t.Rate.IsNegative() || t.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("tax rate %s outside [0,1]", t.Rate)
	}
	return nil
}

// Totals aggregates the computed pricing components. Values are exact
// decimals; round only when presenting.
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	TaxableBase decimal.Decimal `json:"taxableBase"`
	Tax         decimal.Decimal `json:"tax"`
	Shipping    decimal.Decimal `json:"shipping"`
	Adjustment  decimal.Decimal `json:"adjustment"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
}

// Rounded returns a copy with every component rounded to 2 decimal places
// for presentation.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:    t.Subtotal.Round(2),
		Discount:    t.Discount.Round(2),
		TaxableBase: t.TaxableBase.Round(2),
		Tax:         t.Tax.Round(2),
		Shipping:    t.Shipping.Round(2),
		Adjustment:  t.Adjustment.Round(2),
		GrandTotal:  t.GrandTotal.Round(2),
	}
}

// ComputeTotals derives order totals from the current lines and order-level
// inputs. It is a pure function: totals are recomputed on every call and
// never cached. The taxable base is floored at zero, so a discount larger
// than the subtotal cannot produce negative tax. The adjustment may be
// negative (manual rounding correction).
func ComputeTotals(lines []Line, discount OrderDiscount, tax TaxConfig, shipping, adjustment decimal.Decimal) Totals {
	subtotal := Subtotal(lines)
	deduction := discount.Amount(subtotal)
	taxable := subtotal.Sub(deduction)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	taxAmount := decimal.Zero
	if tax.Enabled {
		taxAmount = taxable.Mul(tax.Rate)
	}
	return Totals{
		Subtotal:    subtotal,
		Discount:    deduction,
		TaxableBase: taxable,
		Tax:         taxAmount,
		Shipping:    shipping,
		Adjustment:  adjustment,
		GrandTotal:  taxable.Add(taxAmount).Add(shipping).Add(adjustment),
	}
}
