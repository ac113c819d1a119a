package discount

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status marks whether a rule participates in resolution.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Scope is the targeting rule determining which products a discount can
// apply to, from most to least specific.
type Scope string

const (
	ScopeProduct          Scope = "specific_product"
	ScopeSelectedProducts Scope = "selected_products"
	ScopeCategory         Scope = "specific_category"
	ScopeAllProducts      Scope = "all_products"
)

// Kind selects the discount arithmetic.
type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
	KindBuyXGetY   Kind = "buy_x_get_y"
)

// Rule is one entry of the discount catalog. Rules are consumed read-only;
// the catalog service owns their lifecycle.
type Rule struct {
	ID          uuid.UUID       `json:"id"`
	Label       string          `json:"label"`
	Kind        Kind            `json:"kind"`
	Scope       Scope           `json:"scope"`
	Status      Status          `json:"status"`
	Percentage  decimal.Decimal `json:"percentage"`
	FixedAmount decimal.Decimal `json:"fixedAmount"`
	BuyQty      int             `json:"buyQty"`
	GetQty      int             `json:"getQty"`
	ProductID   *uuid.UUID      `json:"productId,omitempty"`
	ProductIDs  []uuid.UUID     `json:"productIds,omitempty"`
	CategoryID  string          `json:"categoryId,omitempty"`
	StartDate   *time.Time      `json:"startDate,omitempty"`
	EndDate     *time.Time      `json:"endDate,omitempty"`
}

// ActiveOn reports whether the rule is active and asOf falls inside its
// validity window. Both bounds are inclusive and compared at UTC calendar
// day granularity, so time-of-day and timezone offsets cannot flip a rule
// on its boundary days. A missing bound leaves that side unbounded.
func (r Rule) ActiveOn(asOf time.Time) bool {
	if r.Status != StatusActive {
		return false
	}
	day := utcDay(asOf)
	if r.StartDate != nil && day.Before(utcDay(*r.StartDate)) {
		return false
	}
	if r.EndDate != nil && day.After(utcDay(*r.EndDate)) {
		return false
	}
	return true
}

// Matches reports whether the rule's scope predicate covers the product.
// Category ids are compared as trimmed strings to tolerate numeric/string
// inconsistency in upstream catalog data.
func (r Rule) Matches(productID uuid.UUID, categoryID string) bool {
	switch r.Scope {
	case ScopeProduct:
		return r.ProductID != nil && *r.ProductID == productID
	case ScopeSelectedProducts:
		for _, id := range r.ProductIDs {
			if id == productID {
				return true
			}
		}
		return false
	case ScopeCategory:
		return strings.TrimSpace(r.CategoryID) != "" &&
			strings.TrimSpace(r.CategoryID) == strings.TrimSpace(categoryID)
	case ScopeAllProducts:
		return true
	}
	return false
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scopeRank(s Scope) int {
	switch s {
	case ScopeProduct:
		return 1
	case ScopeSelectedProducts:
		return 2
	case ScopeCategory:
		return 3
	case ScopeAllProducts:
		return 4
	}
	return 5
}

func kindRank(k Kind) int {
	// Immediate-value discounts win over conditional ones at equal scope.
	if k == KindBuyXGetY {
		return 2
	}
	return 1
}
