package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a draft id does not exist.
	ErrNotFound = errors.New("draft not found")
	// ErrItemNotFound is returned when an item id does not exist on the draft.
	ErrItemNotFound = errors.New("draft item not found")
	// ErrInvalid marks rejected input values.
	ErrInvalid = errors.New("invalid value")
)

const draftColumns = `id, currency, sale_type, discount_type, discount_value,
	tax_enabled, tax_rate, shipping_cost, adjustment, carrier, payment_method,
	created_at, updated_at`

const itemColumns = `id, draft_id, item_type, ref_id, product_id, category_id,
	name, qty, unit_price, discount_amount, discount_percent, discount_label, rule_id`

// Store persists drafts and their items in Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

// CreateDraft inserts a new draft and returns it.
func (s *Store) CreateDraft(ctx context.Context, d Draft) (Draft, error) {
	if s == nil || s.Pool == nil {
		return Draft{}, errors.New("draft store not configured")
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	err := s.Pool.QueryRow(ctx, `INSERT INTO order_drafts
		(id, currency, sale_type, discount_type, discount_value, tax_enabled,
		 tax_rate, shipping_cost, adjustment, carrier, payment_method)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		d.ID, d.Currency, d.SaleType, d.DiscountType, d.DiscountValue,
		d.TaxEnabled, d.TaxRate, d.ShippingCost, d.Adjustment, d.Carrier,
		d.PaymentMethod).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return Draft{}, fmt.Errorf("create draft: %w", err)
	}
	return d, nil
}

// GetDraft fetches a draft by id.
func (s *Store) GetDraft(ctx context.Context, id uuid.UUID) (Draft, error) {
	if s == nil || s.Pool == nil {
		return Draft{}, errors.New("draft store not configured")
	}
	var d Draft
	err := s.Pool.QueryRow(ctx, `SELECT `+draftColumns+`
		FROM order_drafts WHERE id = $1`, id).
		Scan(&d.ID, &d.Currency, &d.SaleType, &d.DiscountType, &d.DiscountValue,
			&d.TaxEnabled, &d.TaxRate, &d.ShippingCost, &d.Adjustment,
			&d.Carrier, &d.PaymentMethod, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Draft{}, ErrNotFound
		}
		return Draft{}, fmt.Errorf("get draft: %w", err)
	}
	return d, nil
}

// UpdateDraft persists the order-level fields of a draft.
func (s *Store) UpdateDraft(ctx context.Context, d Draft) (Draft, error) {
	if s == nil || s.Pool == nil {
		return Draft{}, errors.New("draft store not configured")
	}
	err := s.Pool.QueryRow(ctx, `UPDATE order_drafts SET
		currency = $2, sale_type = $3, discount_type = $4, discount_value = $5,
		tax_enabled = $6, tax_rate = $7, shipping_cost = $8, adjustment = $9,
		carrier = $10, payment_method = $11, updated_at = now()
		WHERE id = $1 RETURNING updated_at`,
		d.ID, d.Currency, d.SaleType, d.DiscountType, d.DiscountValue,
		d.TaxEnabled, d.TaxRate, d.ShippingCost, d.Adjustment, d.Carrier,
		d.PaymentMethod).Scan(&d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Draft{}, ErrNotFound
		}
		return Draft{}, fmt.Errorf("update draft: %w", err)
	}
	return d, nil
}

// TouchDraft bumps updated_at so item mutations keep the draft fresh for the
// purge task.
func (s *Store) TouchDraft(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.Pool == nil {
		return errors.New("draft store not configured")
	}
	tag, err := s.Pool.Exec(ctx, `UPDATE order_drafts SET updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListItems returns the draft's items in insertion order.
func (s *Store) ListItems(ctx context.Context, draftID uuid.UUID) ([]Item, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("draft store not configured")
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+itemColumns+`
		FROM draft_items WHERE draft_id = $1 ORDER BY created_at, id`, draftID)
	if err != nil {
		return nil, fmt.Errorf("list draft items: %w", err)
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetItem fetches one item scoped to its draft.
func (s *Store) GetItem(ctx context.Context, draftID, itemID uuid.UUID) (Item, error) {
	if s == nil || s.Pool == nil {
		return Item{}, errors.New("draft store not configured")
	}
	it, err := scanItem(s.Pool.QueryRow(ctx, `SELECT `+itemColumns+`
		FROM draft_items WHERE draft_id = $1 AND id = $2`, draftID, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrItemNotFound
		}
		return Item{}, fmt.Errorf("get draft item: %w", err)
	}
	return it, nil
}

// InsertItem appends an item to a draft.
func (s *Store) InsertItem(ctx context.Context, it Item) (Item, error) {
	if s == nil || s.Pool == nil {
		return Item{}, errors.New("draft store not configured")
	}
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	_, err := s.Pool.Exec(ctx, `INSERT INTO draft_items
		(id, draft_id, item_type, ref_id, product_id, category_id, name, qty,
		 unit_price, discount_amount, discount_percent, discount_label, rule_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		it.ID, it.DraftID, it.ItemType, it.RefID, it.ProductID, it.CategoryID,
		it.Name, it.Qty, it.UnitPrice, it.DiscountAmount, it.DiscountPercent,
		it.DiscountLabel, it.RuleID)
	if err != nil {
		return Item{}, fmt.Errorf("insert draft item: %w", err)
	}
	return it, nil
}

// UpdateItem persists the mutable line fields of an item.
func (s *Store) UpdateItem(ctx context.Context, it Item) (Item, error) {
	if s == nil || s.Pool == nil {
		return Item{}, errors.New("draft store not configured")
	}
	tag, err := s.Pool.Exec(ctx, `UPDATE draft_items SET
		qty = $3, unit_price = $4, discount_amount = $5, discount_percent = $6,
		discount_label = $7
		WHERE draft_id = $1 AND id = $2`,
		it.DraftID, it.ID, it.Qty, it.UnitPrice, it.DiscountAmount,
		it.DiscountPercent, it.DiscountLabel)
	if err != nil {
		return Item{}, fmt.Errorf("update draft item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Item{}, ErrItemNotFound
	}
	return it, nil
}

// DeleteItem removes one item from a draft.
func (s *Store) DeleteItem(ctx context.Context, draftID, itemID uuid.UUID) error {
	if s == nil || s.Pool == nil {
		return errors.New("draft store not configured")
	}
	tag, err := s.Pool.Exec(ctx, `DELETE FROM draft_items WHERE draft_id = $1 AND id = $2`,
		draftID, itemID)
	if err != nil {
		return fmt.Errorf("delete draft item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// PurgeStale deletes drafts untouched since the cutoff and returns their ids.
// Items follow via the foreign key cascade.
func (s *Store) PurgeStale(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("draft store not configured")
	}
	rows, err := s.Pool.Query(ctx, `DELETE FROM order_drafts WHERE updated_at < $1 RETURNING id`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("purge stale drafts: %w", err)
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan purged draft id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.DraftID, &it.ItemType, &it.RefID, &it.ProductID,
		&it.CategoryID, &it.Name, &it.Qty, &it.UnitPrice, &it.DiscountAmount,
		&it.DiscountPercent, &it.DiscountLabel, &it.RuleID)
	return it, err
}
