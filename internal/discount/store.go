package discount

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a rule id does not exist.
var ErrNotFound = errors.New("discount rule not found")

const ruleColumns = `id, label, kind, scope, status, percentage, fixed_amount,
	buy_qty, get_qty, product_id, product_ids, category_id, start_date, end_date`

// Store persists discount rules in Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

// ListActive returns every rule currently marked active. Date-window
// filtering stays in the resolver so cached snapshots remain valid across
// day boundaries.
func (s *Store) ListActive(ctx context.Context) ([]Rule, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("discount store not configured")
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+ruleColumns+`
		FROM discount_rules WHERE status = 'active' ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list active discount rules: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

// List returns the whole catalog, newest first.
func (s *Store) List(ctx context.Context) ([]Rule, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("discount store not configured")
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+ruleColumns+`
		FROM discount_rules ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list discount rules: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

// Get fetches a single rule by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Rule, error) {
	if s == nil || s.Pool == nil {
		return Rule{}, errors.New("discount store not configured")
	}
	row := s.Pool.QueryRow(ctx, `SELECT `+ruleColumns+`
		FROM discount_rules WHERE id = $1`, id)
	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rule{}, ErrNotFound
		}
		return Rule{}, fmt.Errorf("get discount rule: %w", err)
	}
	return rule, nil
}

// Create inserts a rule and returns it with the generated id.
func (s *Store) Create(ctx context.Context, r Rule) (Rule, error) {
	if s == nil || s.Pool == nil {
		return Rule{}, errors.New("discount store not configured")
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	_, err := s.Pool.Exec(ctx, `INSERT INTO discount_rules
		(id, label, kind, scope, status, percentage, fixed_amount, buy_qty, get_qty,
		 product_id, product_ids, category_id, start_date, end_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		r.ID, r.Label, r.Kind, r.Scope, r.Status, r.Percentage, r.FixedAmount,
		r.BuyQty, r.GetQty, r.ProductID, uuidStrings(r.ProductIDs), r.CategoryID,
		r.StartDate, r.EndDate)
	if err != nil {
		return Rule{}, fmt.Errorf("create discount rule: %w", err)
	}
	return r, nil
}

// Update replaces a rule's mutable fields.
func (s *Store) Update(ctx context.Context, r Rule) (Rule, error) {
	if s == nil || s.Pool == nil {
		return Rule{}, errors.New("discount store not configured")
	}
	tag, err := s.Pool.Exec(ctx, `UPDATE discount_rules SET
		label = $2, kind = $3, scope = $4, status = $5, percentage = $6,
		fixed_amount = $7, buy_qty = $8, get_qty = $9, product_id = $10,
		product_ids = $11, category_id = $12, start_date = $13, end_date = $14,
		updated_at = now()
		WHERE id = $1`,
		r.ID, r.Label, r.Kind, r.Scope, r.Status, r.Percentage, r.FixedAmount,
		r.BuyQty, r.GetQty, r.ProductID, uuidStrings(r.ProductIDs), r.CategoryID,
		r.StartDate, r.EndDate)
	if err != nil {
		return Rule{}, fmt.Errorf("update discount rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Rule{}, ErrNotFound
	}
	return r, nil
}

// Delete removes a rule by id.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.Pool == nil {
		return errors.New("discount store not configured")
	}
	tag, err := s.Pool.Exec(ctx, `DELETE FROM discount_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete discount rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateExpired flips rules whose end date has passed to inactive and
// returns how many rows changed. Run by the background worker once a day.
func (s *Store) DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error) {
	if s == nil || s.Pool == nil {
		return 0, errors.New("discount store not configured")
	}
	tag, err := s.Pool.Exec(ctx, `UPDATE discount_rules
		SET status = 'inactive', updated_at = now()
		WHERE status = 'active' AND end_date IS NOT NULL
		  AND date_trunc('day', end_date AT TIME ZONE 'UTC') < date_trunc('day', ($1::timestamptz) AT TIME ZONE 'UTC')`,
		asOf)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired discount rules: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRules(rows pgx.Rows) ([]Rule, error) {
	var out []Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan discount rule: %w", err)
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func scanRule(row pgx.Row) (Rule, error) {
	var (
		r   Rule
		ids []string
	)
	if err := row.Scan(&r.ID, &r.Label, &r.Kind, &r.Scope, &r.Status,
		&r.Percentage, &r.FixedAmount, &r.BuyQty, &r.GetQty,
		&r.ProductID, &ids, &r.CategoryID, &r.StartDate, &r.EndDate); err != nil {
		return Rule{}, err
	}
	for _, raw := range ids {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		r.ProductIDs = append(r.ProductIDs, parsed)
	}
	return r, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
