package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethodCOD is the payment method code for cash on delivery.
const PaymentMethodCOD = "cod"

// CODPolicy describes which carrier/currency combinations support cash on
// delivery collection.
type CODPolicy struct {
	Carriers   []string
	Currencies []string
}

// CODDetails is the derived collect-on-delivery state for a draft. It is a
// read model: the amount always follows the current grand total and is
// recomputed whenever any total input changes, never edited independently.
type CODDetails struct {
	Active   bool            `json:"active"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// Applies reports whether the carrier/payment-method combination collects
// cash on delivery under this policy.
func (p CODPolicy) Applies(carrier, paymentMethod string) bool {
	if !strings.EqualFold(strings.TrimSpace(paymentMethod), PaymentMethodCOD) {
		return false
	}
	carrier = strings.TrimSpace(carrier)
	for _, c := range p.Carriers {
		if strings.EqualFold(c, carrier) {
			return true
		}
	}
	return false
}

// CollectOnDelivery derives the COD fields from the current totals. The
// collected currency equals the order currency when it is in the allowed
// set, otherwise the policy's first currency is used.
func (p CODPolicy) CollectOnDelivery(t Totals, currency, carrier, paymentMethod string) CODDetails {
	if !p.Applies(carrier, paymentMethod) {
		return CODDetails{}
	}
	collected := ""
	for _, c := range p.Currencies {
		if strings.EqualFold(c, currency) {
			collected = strings.ToUpper(currency)
			break
		}
	}
	if collected == "" && len(p.Currencies) > 0 {
		collected = strings.ToUpper(p.Currencies[0])
	}
	return CODDetails{
		Active:   true,
		Amount:   t.GrandTotal.Round(2),
		Currency: collected,
	}
}
