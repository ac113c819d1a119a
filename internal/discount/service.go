package discount

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Catalog captures the persistence methods required by the discount service.
type Catalog interface {
	ListActive(ctx context.Context) ([]Rule, error)
	List(ctx context.Context) ([]Rule, error)
	Get(ctx context.Context, id uuid.UUID) (Rule, error)
	Create(ctx context.Context, r Rule) (Rule, error)
	Update(ctx context.Context, r Rule) (Rule, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error)
}

// Resolution pairs the winning rule with its computed effect on a line.
type Resolution struct {
	Rule    Rule    `json:"rule"`
	Applied Applied `json:"applied"`
}

// Service owns the discount catalog lifecycle and per-item resolution. Reads
// go through a cache-aside Redis snapshot of the active rule set; every
// catalog write invalidates it.
type Service struct {
	Store   Catalog
	Cache   *Cache
	Log     zerolog.Logger
	Now     func() time.Time
	Observe func(outcome string)
}

// ActiveRules returns the active rule set, serving from cache when possible.
func (s *Service) ActiveRules(ctx context.Context) ([]Rule, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("discount service not configured")
	}
	var cached []Rule
	hit, err := s.Cache.GetJSON(ctx, activeRulesKey, &cached)
	if err != nil {
		s.Log.Debug().Err(err).Msg("discount cache read failed")
	}
	if hit {
		return cached, nil
	}
	rules, err := s.Store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.SetJSON(ctx, activeRulesKey, rules); err != nil {
		s.Log.Debug().Err(err).Msg("discount cache write failed")
	}
	return rules, nil
}

// ForItem resolves the discount effect for one product line as of now.
// A nil result means no rule applies.
func (s *Service) ForItem(ctx context.Context, productID uuid.UUID, categoryID string, unitPrice decimal.Decimal, qty int) (*Resolution, error) {
	rules, err := s.ActiveRules(ctx)
	if err != nil {
		return nil, err
	}
	rule := FindApplicable(productID, categoryID, rules, s.now())
	if rule == nil {
		s.observe("none")
		return nil, nil
	}
	applied := Compute(*rule, unitPrice, qty)
	switch rule.Kind {
	case KindPercentage, KindFixed, KindBuyXGetY:
		s.observe("matched")
	default:
		s.observe("unknown_type")
	}
	return &Resolution{Rule: *rule, Applied: applied}, nil
}

// List returns the full catalog for the admin surface.
func (s *Service) List(ctx context.Context) ([]Rule, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("discount service not configured")
	}
	return s.Store.List(ctx)
}

// Get fetches one rule by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Rule, error) {
	if s == nil || s.Store == nil {
		return Rule{}, errors.New("discount service not configured")
	}
	return s.Store.Get(ctx, id)
}

// Create validates and persists a new rule.
func (s *Service) Create(ctx context.Context, r Rule) (Rule, error) {
	if s == nil || s.Store == nil {
		return Rule{}, errors.New("discount service not configured")
	}
	if err := validateRule(&r); err != nil {
		return Rule{}, err
	}
	created, err := s.Store.Create(ctx, r)
	if err != nil {
		return Rule{}, err
	}
	s.Cache.Invalidate(ctx)
	return created, nil
}

// Update replaces an existing rule.
func (s *Service) Update(ctx context.Context, r Rule) (Rule, error) {
	if s == nil || s.Store == nil {
		return Rule{}, errors.New("discount service not configured")
	}
	if err := validateRule(&r); err != nil {
		return Rule{}, err
	}
	updated, err := s.Store.Update(ctx, r)
	if err != nil {
		return Rule{}, err
	}
	s.Cache.Invalidate(ctx)
	return updated, nil
}

// Delete removes a rule.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("discount service not configured")
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx)
	return nil
}

// ExpireSweep deactivates rules whose window has closed. Used by the worker.
func (s *Service) ExpireSweep(ctx context.Context) (int64, error) {
	if s == nil || s.Store == nil {
		return 0, errors.New("discount service not configured")
	}
	n, err := s.Store.DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.Cache.Invalidate(ctx)
	}
	return n, nil
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) observe(outcome string) {
	if s != nil && s.Observe != nil {
		s.Observe(outcome)
	}
}

func validateRule(r *Rule) error {
	switch r.Status {
	case "":
		r.Status = StatusActive
	case StatusActive, StatusInactive:
	default:
		return errors.New("invalid status")
	}
	switch r.Scope {
	case ScopeProduct:
		if r.ProductID == nil || *r.ProductID == uuid.Nil {
			return errors.New("specific_product requires productId")
		}
	case ScopeSelectedProducts:
		if len(r.ProductIDs) == 0 {
			return errors.New("selected_products requires productIds")
		}
	case ScopeCategory:
		if r.CategoryID == "" {
			return errors.New("specific_category requires categoryId")
		}
	case ScopeAllProducts:
	default:
		return errors.New("invalid scope")
	}
	switch r.Kind {
	case KindPercentage:
		if r.Percentage.IsNegative() || r.Percentage.GreaterThan(hundred) {
			return errors.New("percentage must be between 0 and 100")
		}
	case KindFixed:
		if r.FixedAmount.IsNegative() {
			return errors.New("fixedAmount must not be negative")
		}
	case KindBuyXGetY:
		if r.BuyQty <= 0 || r.GetQty <= 0 {
			return errors.New("buy_x_get_y requires positive buyQty and getQty")
		}
	default:
		return errors.New("invalid kind")
	}
	if r.StartDate != nil && r.EndDate != nil && utcDay(*r.EndDate).Before(utcDay(*r.StartDate)) {
		return errors.New("endDate must not precede startDate")
	}
	return nil
}
