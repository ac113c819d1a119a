package discount

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func uuidMust(value string) uuid.UUID {
	id, err := uuid.Parse(value)
	if err != nil {
		panic(err)
	}
	return id
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

var (
	prodID  = uuidMust("11111111-1111-1111-1111-111111111111")
	otherID = uuidMust("22222222-2222-2222-2222-222222222222")
	asOf    = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
)

func activeRule(scope Scope, kind Kind) Rule {
	return Rule{
		ID:         uuid.New(),
		Kind:       kind,
		Scope:      scope,
		Status:     StatusActive,
		Percentage: dec("10"),
	}
}

func TestFindApplicablePrefersSpecificProduct(t *testing.T) {
	specific := activeRule(ScopeProduct, KindPercentage)
	specific.ProductID = &prodID
	catalog := []Rule{
		activeRule(ScopeAllProducts, KindPercentage),
		specific,
	}
	got := FindApplicable(prodID, "7", catalog, asOf)
	if got == nil || got.ID != specific.ID {
		t.Fatalf("expected the specific_product rule, got %+v", got)
	}
}

func TestFindApplicablePrefersImmediateValueOnTie(t *testing.T) {
	bxgy := activeRule(ScopeAllProducts, KindBuyXGetY)
	bxgy.BuyQty, bxgy.GetQty = 2, 1
	percent := activeRule(ScopeAllProducts, KindPercentage)
	catalog := []Rule{bxgy, percent}

	got := FindApplicable(prodID, "", catalog, asOf)
	if got == nil || got.ID != percent.ID {
		t.Fatalf("expected the percentage rule at equal scope, got %+v", got)
	}
}

func TestFindApplicableScopePredicates(t *testing.T) {
	selected := activeRule(ScopeSelectedProducts, KindFixed)
	selected.ProductIDs = []uuid.UUID{otherID, prodID}
	category := activeRule(ScopeCategory, KindPercentage)
	category.CategoryID = "12"

	if got := FindApplicable(prodID, "", []Rule{selected}, asOf); got == nil {
		t.Fatal("selected_products should match by membership")
	}
	if got := FindApplicable(uuid.New(), "", []Rule{selected}, asOf); got != nil {
		t.Fatal("selected_products must not match a foreign product")
	}
	if got := FindApplicable(prodID, "12", []Rule{category}, asOf); got == nil {
		t.Fatal("specific_category should match on category id")
	}
	if got := FindApplicable(prodID, " 12 ", []Rule{category}, asOf); got == nil {
		t.Fatal("category comparison should tolerate surrounding whitespace")
	}
	if got := FindApplicable(prodID, "13", []Rule{category}, asOf); got != nil {
		t.Fatal("specific_category must not match another category")
	}
}

func TestFindApplicableSkipsInactiveAndExpired(t *testing.T) {
	inactive := activeRule(ScopeAllProducts, KindPercentage)
	inactive.Status = StatusInactive

	expired := activeRule(ScopeAllProducts, KindPercentage)
	end := asOf.AddDate(0, 0, -1)
	expired.EndDate = &end

	upcoming := activeRule(ScopeAllProducts, KindPercentage)
	start := asOf.AddDate(0, 0, 1)
	upcoming.StartDate = &start

	if got := FindApplicable(prodID, "", []Rule{inactive, expired, upcoming}, asOf); got != nil {
		t.Fatalf("no rule should apply, got %+v", got)
	}
}

func TestFindApplicableWindowBoundsInclusiveAtDayGranularity(t *testing.T) {
	rule := activeRule(ScopeAllProducts, KindPercentage)
	// endDate carries an early-morning timestamp; a query later the same UTC
	// day must still match because comparison truncates to the calendar day.
	end := time.Date(2026, time.March, 15, 1, 0, 0, 0, time.UTC)
	rule.EndDate = &end

	late := time.Date(2026, time.March, 15, 23, 30, 0, 0, time.UTC)
	if got := FindApplicable(prodID, "", []Rule{rule}, late); got == nil {
		t.Fatal("rule ending today should still apply tonight")
	}
	nextDay := time.Date(2026, time.March, 16, 0, 30, 0, 0, time.UTC)
	if got := FindApplicable(prodID, "", []Rule{rule}, nextDay); got != nil {
		t.Fatal("rule must stop applying the day after endDate")
	}
}

func TestFindApplicableDeterministic(t *testing.T) {
	catalog := []Rule{
		activeRule(ScopeAllProducts, KindPercentage),
		activeRule(ScopeAllProducts, KindFixed),
	}
	first := FindApplicable(prodID, "", catalog, asOf)
	for i := 0; i < 5; i++ {
		again := FindApplicable(prodID, "", catalog, asOf)
		if again == nil || again.ID != first.ID {
			t.Fatal("resolution must be stable across calls")
		}
	}
}
