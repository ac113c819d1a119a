package discount

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// FindApplicable returns the discount rule that applies to the given
// product as of the provided instant, or nil when none matches. Candidates
// are ordered by scope specificity (specific product first, catalog-wide
// last), with immediate-value kinds preferred over buy-x-get-y on ties; the
// first candidate whose scope predicate matches wins.
//
// The function is pure and deterministic: the same catalog and inputs always
// resolve to the same rule.
func FindApplicable(productID uuid.UUID, categoryID string, catalog []Rule, asOf time.Time) *Rule {
	candidates := make([]Rule, 0, len(catalog))
	for _, r := range catalog {
		if r.ActiveOn(asOf) {
			candidates = append(candidates, r)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := scopeRank(candidates[i].Scope), scopeRank(candidates[j].Scope)
		if si != sj {
			return si < sj
		}
		return kindRank(candidates[i].Kind) < kindRank(candidates[j].Kind)
	})
	for i := range candidates {
		if candidates[i].Matches(productID, categoryID) {
			matched := candidates[i]
			return &matched
		}
	}
	return nil
}
