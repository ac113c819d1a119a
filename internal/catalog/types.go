package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleType selects which price column applies to a draft.
type SaleType string

const (
	SaleRetail    SaleType = "retail"
	SaleWholesale SaleType = "wholesale"
)

// Valid reports whether the sale type is one of the known values.
func (s SaleType) Valid() bool {
	return s == SaleRetail || s == SaleWholesale
}

// ItemType identifies which catalog table a draft line references.
type ItemType string

const (
	ItemProduct ItemType = "product"
	ItemVariant ItemType = "variant"
	ItemService ItemType = "service"
	ItemBundle  ItemType = "bundle"
)

// Product is a sellable catalog entry with per-sale-type pricing.
type Product struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	SKU            string          `json:"sku"`
	CategoryID     string          `json:"categoryId"`
	RetailPrice    decimal.Decimal `json:"retailPrice"`
	WholesalePrice decimal.Decimal `json:"wholesalePrice"`
	LandingCost    decimal.Decimal `json:"landingCost"`
	Stock          int             `json:"stock"`
}

// Variant is a sized or coloured variation of a product carrying its own
// prices. Discount targeting resolves through the parent product.
type Variant struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"productId"`
	Name           string          `json:"name"`
	RetailPrice    decimal.Decimal `json:"retailPrice"`
	WholesalePrice decimal.Decimal `json:"wholesalePrice"`
	Stock          int             `json:"stock"`
}

// ServiceItem is a flat-priced non-stock line (assembly, delivery setup).
type ServiceItem struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Bundle is a fixed-price grouping sold as one line.
type Bundle struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Ref describes the pricing-relevant identity of a resolved catalog entry.
// ProductID and CategoryID feed discount resolution; for services and
// bundles they fall back to the entry's own id and an empty category.
type Ref struct {
	Type       ItemType        `json:"type"`
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"productId"`
	CategoryID string          `json:"categoryId"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

func priceFor(sale SaleType, retail, wholesale decimal.Decimal) decimal.Decimal {
	if sale == SaleWholesale {
		return wholesale
	}
	return retail
}
