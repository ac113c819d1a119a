package draft

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warekit/pricing-api/internal/catalog"
	"github.com/warekit/pricing-api/internal/pricing"
)

// Draft is an order under construction. Only engine inputs are persisted;
// totals are recomputed on every read.
type Draft struct {
	ID            uuid.UUID            `json:"id"`
	Currency      string               `json:"currency"`
	SaleType      catalog.SaleType     `json:"saleType"`
	DiscountType  pricing.DiscountType `json:"discountType"`
	DiscountValue decimal.Decimal      `json:"discountValue"`
	TaxEnabled    bool                 `json:"taxEnabled"`
	TaxRate       decimal.Decimal      `json:"taxRate"`
	ShippingCost  decimal.Decimal      `json:"shippingCost"`
	Adjustment    decimal.Decimal      `json:"adjustment"`
	Carrier       string               `json:"carrier"`
	PaymentMethod string               `json:"paymentMethod"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// Item is one line of a draft. The discount columns are locked in when the
// item is added and only change through explicit field mutations.
type Item struct {
	ID              uuid.UUID        `json:"id"`
	DraftID         uuid.UUID        `json:"draftId"`
	ItemType        catalog.ItemType `json:"itemType"`
	RefID           uuid.UUID        `json:"refId"`
	ProductID       uuid.UUID        `json:"productId"`
	CategoryID      string           `json:"categoryId"`
	Name            string           `json:"name"`
	Qty             int              `json:"qty"`
	UnitPrice       decimal.Decimal  `json:"unitPrice"`
	DiscountAmount  decimal.Decimal  `json:"discountAmount"`
	DiscountPercent decimal.Decimal  `json:"discountPercent"`
	DiscountLabel   string           `json:"discountLabel,omitempty"`
	RuleID          *uuid.UUID       `json:"ruleId,omitempty"`
}

// Line converts the item to its engine representation.
func (it Item) Line() pricing.Line {
	return pricing.Line{
		Qty:             it.Qty,
		UnitPrice:       it.UnitPrice,
		DiscountAmount:  it.DiscountAmount,
		DiscountPercent: it.DiscountPercent,
	}
}

// ItemView is an item with its derived line total.
type ItemView struct {
	Item
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// View is the full read model returned by the API: the draft, its items and
// freshly computed totals plus the derived cash-on-delivery fields.
type View struct {
	Draft  Draft              `json:"draft"`
	Items  []ItemView         `json:"items"`
	Totals pricing.Totals     `json:"totals"`
	COD    pricing.CODDetails `json:"cod"`
}
