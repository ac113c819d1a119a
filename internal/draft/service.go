package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warekit/pricing-api/internal/catalog"
	"github.com/warekit/pricing-api/internal/discount"
	"github.com/warekit/pricing-api/internal/events"
	"github.com/warekit/pricing-api/internal/pricing"
)

// Storage captures the persistence methods required by the draft service.
type Storage interface {
	CreateDraft(ctx context.Context, d Draft) (Draft, error)
	GetDraft(ctx context.Context, id uuid.UUID) (Draft, error)
	UpdateDraft(ctx context.Context, d Draft) (Draft, error)
	TouchDraft(ctx context.Context, id uuid.UUID) error
	ListItems(ctx context.Context, draftID uuid.UUID) ([]Item, error)
	GetItem(ctx context.Context, draftID, itemID uuid.UUID) (Item, error)
	InsertItem(ctx context.Context, it Item) (Item, error)
	UpdateItem(ctx context.Context, it Item) (Item, error)
	DeleteItem(ctx context.Context, draftID, itemID uuid.UUID) error
	PurgeStale(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}

// PriceSource resolves catalog references to unit prices.
type PriceSource interface {
	Resolve(ctx context.Context, itemType catalog.ItemType, id uuid.UUID, sale catalog.SaleType) (catalog.Ref, error)
}

// DiscountSource resolves the applicable discount for a product line.
type DiscountSource interface {
	ForItem(ctx context.Context, productID uuid.UUID, categoryID string, unitPrice decimal.Decimal, qty int) (*discount.Resolution, error)
}

// Metrics holds optional observation hooks wired to Prometheus counters.
type Metrics struct {
	Compute  func()
	Mutation func(field string)
	Solver   func()
}

// Service owns order-draft editing. Every read recomputes totals from the
// persisted engine inputs; a discount resolution failure degrades to an
// undiscounted line instead of failing the request.
type Service struct {
	Store     Storage
	Catalog   PriceSource
	Discounts DiscountSource
	Bus       *events.Bus
	COD       pricing.CODPolicy
	Log       zerolog.Logger
	Metrics   Metrics
	Now       func() time.Time
}

// OrderPatch carries the optional order-level field updates of a PATCH.
// TaxRate is the engine fraction; the HTTP layer converts from percent.
type OrderPatch struct {
	Currency      *string
	SaleType      *catalog.SaleType
	DiscountType  *pricing.DiscountType
	DiscountValue *decimal.Decimal
	TaxEnabled    *bool
	TaxRate       *decimal.Decimal
	ShippingCost  *decimal.Decimal
	Adjustment    *decimal.Decimal
	Carrier       *string
	PaymentMethod *string
}

// Create starts a new empty draft.
func (s *Service) Create(ctx context.Context, currency string, sale catalog.SaleType) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("draft service not configured")
	}
	if !sale.Valid() {
		sale = catalog.SaleRetail
	}
	d, err := s.Store.CreateDraft(ctx, Draft{
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
		SaleType: sale,
	})
	if err != nil {
		return View{}, err
	}
	s.emit(ctx, events.TopicDraftCreated, d.ID, map[string]any{"currency": d.Currency, "saleType": d.SaleType})
	return s.view(d, nil), nil
}

// Get returns the draft with freshly computed totals.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("draft service not configured")
	}
	d, err := s.Store.GetDraft(ctx, id)
	if err != nil {
		return View{}, err
	}
	items, err := s.Store.ListItems(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.view(d, items), nil
}

// UpdateOrder applies order-level field changes and returns the new view.
func (s *Service) UpdateOrder(ctx context.Context, id uuid.UUID, patch OrderPatch) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("draft service not configured")
	}
	d, err := s.Store.GetDraft(ctx, id)
	if err != nil {
		return View{}, err
	}
	if patch.Currency != nil {
		d.Currency = strings.ToUpper(strings.TrimSpace(*patch.Currency))
	}
	if patch.SaleType != nil {
		if !patch.SaleType.Valid() {
			return View{}, fmt.Errorf("%w: sale type", ErrInvalid)
		}
		d.SaleType = *patch.SaleType
	}
	if patch.DiscountType != nil {
		switch *patch.DiscountType {
		case pricing.DiscountNone, pricing.DiscountFlat, pricing.DiscountRate:
			d.DiscountType = *patch.DiscountType
		default:
			return View{}, fmt.Errorf("%w: discount type", ErrInvalid)
		}
	}
	if patch.DiscountValue != nil {
		d.DiscountValue = *patch.DiscountValue
	}
	if patch.TaxEnabled != nil {
		d.TaxEnabled = *patch.TaxEnabled
	}
	if patch.TaxRate != nil {
		d.TaxRate = *patch.TaxRate
	}
	if patch.ShippingCost != nil {
		d.ShippingCost = *patch.ShippingCost
	}
	if patch.Adjustment != nil {
		d.Adjustment = *patch.Adjustment
	}
	if patch.Carrier != nil {
		d.Carrier = strings.TrimSpace(*patch.Carrier)
	}
	if patch.PaymentMethod != nil {
		d.PaymentMethod = strings.ToLower(strings.TrimSpace(*patch.PaymentMethod))
	}
	if err := (pricing.TaxConfig{Enabled: d.TaxEnabled, Rate: d.TaxRate}).Validate(); err != nil {
		return View{}, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	d, err = s.Store.UpdateDraft(ctx, d)
	if err != nil {
		return View{}, err
	}
	items, err := s.Store.ListItems(ctx, id)
	if err != nil {
		return View{}, err
	}
	s.emit(ctx, events.TopicDraftUpdated, d.ID, nil)
	return s.view(d, items), nil
}

// AddItem resolves the catalog reference, locks in the applicable discount
// and appends the line. A percentage rule records its percent so later
// quantity or price edits rescale the deduction; fixed and buy-x-get-y
// rules record an absolute amount only.
func (s *Service) AddItem(ctx context.Context, draftID uuid.UUID, itemType catalog.ItemType, refID uuid.UUID, qty int) (View, error) {
	if s == nil || s.Store == nil || s.Catalog == nil {
		return View{}, errors.New("draft service not configured")
	}
	d, err := s.Store.GetDraft(ctx, draftID)
	if err != nil {
		return View{}, err
	}
	if qty < 1 {
		qty = 1
	}
	ref, err := s.Catalog.Resolve(ctx, itemType, refID, d.SaleType)
	if err != nil {
		return View{}, err
	}
	it := Item{
		DraftID:    draftID,
		ItemType:   ref.Type,
		RefID:      ref.ID,
		ProductID:  ref.ProductID,
		CategoryID: ref.CategoryID,
		Name:       ref.Name,
		Qty:        qty,
		UnitPrice:  ref.UnitPrice,
	}
	if s.Discounts != nil {
		res, err := s.Discounts.ForItem(ctx, ref.ProductID, ref.CategoryID, ref.UnitPrice, qty)
		if err != nil {
			s.Log.Warn().Err(err).Str("draft_id", draftID.String()).Msg("discount resolution failed, adding line undiscounted")
		} else if res != nil {
			it.DiscountAmount = res.Applied.Amount
			it.DiscountLabel = res.Applied.Label
			ruleID := res.Rule.ID
			it.RuleID = &ruleID
			if res.Rule.Kind == discount.KindPercentage {
				it.DiscountPercent = res.Rule.Percentage
			}
		}
	}
	it, err = s.Store.InsertItem(ctx, it)
	if err != nil {
		return View{}, err
	}
	if err := s.Store.TouchDraft(ctx, draftID); err != nil {
		return View{}, err
	}
	items, err := s.Store.ListItems(ctx, draftID)
	if err != nil {
		return View{}, err
	}
	s.observeMutation("item_added")
	s.emit(ctx, events.TopicDraftItemAdded, draftID, map[string]any{"itemId": it.ID, "refId": it.RefID})
	return s.view(d, items), nil
}

// UpdateItemField applies a single-field mutation to a line using the
// engine's recompute rules.
func (s *Service) UpdateItemField(ctx context.Context, draftID, itemID uuid.UUID, field pricing.Field, value decimal.Decimal) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("draft service not configured")
	}
	if !pricing.KnownField(field) {
		return View{}, fmt.Errorf("%w: item field %q", ErrInvalid, field)
	}
	d, err := s.Store.GetDraft(ctx, draftID)
	if err != nil {
		return View{}, err
	}
	it, err := s.Store.GetItem(ctx, draftID, itemID)
	if err != nil {
		return View{}, err
	}
	line := pricing.Apply(it.Line(), field, value)
	it.Qty = line.Qty
	it.UnitPrice = line.UnitPrice
	it.DiscountAmount = line.DiscountAmount
	it.DiscountPercent = line.DiscountPercent
	if field == pricing.FieldDiscountAmount || field == pricing.FieldDiscountPercent {
		// A manual discount edit replaces whatever rule was locked in.
		it.DiscountLabel = ""
	}
	if _, err := s.Store.UpdateItem(ctx, it); err != nil {
		return View{}, err
	}
	if err := s.Store.TouchDraft(ctx, draftID); err != nil {
		return View{}, err
	}
	items, err := s.Store.ListItems(ctx, draftID)
	if err != nil {
		return View{}, err
	}
	s.observeMutation(string(field))
	s.emit(ctx, events.TopicDraftItemUpdated, draftID, map[string]any{"itemId": itemID, "field": field})
	return s.view(d, items), nil
}

// RemoveItem deletes a line from the draft.
func (s *Service) RemoveItem(ctx context.Context, draftID, itemID uuid.UUID) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("draft service not configured")
	}
	d, err := s.Store.GetDraft(ctx, draftID)
	if err != nil {
		return View{}, err
	}
	if err := s.Store.DeleteItem(ctx, draftID, itemID); err != nil {
		return View{}, err
	}
	if err := s.Store.TouchDraft(ctx, draftID); err != nil {
		return View{}, err
	}
	items, err := s.Store.ListItems(ctx, draftID)
	if err != nil {
		return View{}, err
	}
	s.observeMutation("item_removed")
	s.emit(ctx, events.TopicDraftItemRemoved, draftID, map[string]any{"itemId": itemID})
	return s.view(d, items), nil
}

// ApplyTargetTotal solves for the flat order discount that makes the grand
// total equal target and applies it. The discount type always becomes flat,
// replacing a rate discount if one was set.
func (s *Service) ApplyTargetTotal(ctx context.Context, draftID uuid.UUID, target decimal.Decimal) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("draft service not configured")
	}
	d, err := s.Store.GetDraft(ctx, draftID)
	if err != nil {
		return View{}, err
	}
	items, err := s.Store.ListItems(ctx, draftID)
	if err != nil {
		return View{}, err
	}
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, it.Line())
	}
	solved := pricing.SolveFlatDiscount(lines,
		pricing.TaxConfig{Enabled: d.TaxEnabled, Rate: d.TaxRate},
		d.ShippingCost, d.Adjustment, target)
	d.DiscountType = pricing.DiscountFlat
	d.DiscountValue = solved
	d, err = s.Store.UpdateDraft(ctx, d)
	if err != nil {
		return View{}, err
	}
	if s.Metrics.Solver != nil {
		s.Metrics.Solver()
	}
	s.emit(ctx, events.TopicDraftTargetApplied, draftID, map[string]any{"target": target, "discount": solved})
	return s.view(d, items), nil
}

// PurgeStale removes drafts untouched for longer than ttl. Used by the worker.
func (s *Service) PurgeStale(ctx context.Context, ttl time.Duration) (int, error) {
	if s == nil || s.Store == nil {
		return 0, errors.New("draft service not configured")
	}
	ids, err := s.Store.PurgeStale(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.emit(ctx, events.TopicDraftPurged, id, nil)
	}
	return len(ids), nil
}

func (s *Service) view(d Draft, items []Item) View {
	lines := make([]pricing.Line, 0, len(items))
	views := make([]ItemView, 0, len(items))
	for _, it := range items {
		line := it.Line()
		lines = append(lines, line)
		views = append(views, ItemView{Item: it, LineTotal: line.Total().Round(2)})
	}
	totals := pricing.ComputeTotals(lines,
		pricing.OrderDiscount{Type: d.DiscountType, Value: d.DiscountValue},
		pricing.TaxConfig{Enabled: d.TaxEnabled, Rate: d.TaxRate},
		d.ShippingCost, d.Adjustment)
	if s.Metrics.Compute != nil {
		s.Metrics.Compute()
	}
	cod := s.COD.CollectOnDelivery(totals, d.Currency, d.Carrier, d.PaymentMethod)
	return View{Draft: d, Items: views, Totals: totals.Rounded(), COD: cod}
}

func (s *Service) observeMutation(field string) {
	if s.Metrics.Mutation != nil {
		s.Metrics.Mutation(field)
	}
}

func (s *Service) emit(ctx context.Context, topic string, id uuid.UUID, payload any) {
	if s.Bus == nil {
		return
	}
	if _, err := s.Bus.Emit(ctx, topic, id, payload); err != nil {
		s.Log.Warn().Err(err).Str("topic", topic).Msg("event emit failed")
	}
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
