package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a catalog reference does not exist.
var ErrNotFound = errors.New("catalog entry not found")

// Store reads catalog entries from Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

// ListProducts returns the product catalog ordered by name.
func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("catalog store not configured")
	}
	rows, err := s.Pool.Query(ctx, `SELECT id, name, sku, category_id,
		retail_price, wholesale_price, landing_cost, stock
		FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.CategoryID,
			&p.RetailPrice, &p.WholesalePrice, &p.LandingCost, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProduct fetches one product by id.
func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	if s == nil || s.Pool == nil {
		return Product{}, errors.New("catalog store not configured")
	}
	var p Product
	err := s.Pool.QueryRow(ctx, `SELECT id, name, sku, category_id,
		retail_price, wholesale_price, landing_cost, stock
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.SKU, &p.CategoryID,
			&p.RetailPrice, &p.WholesalePrice, &p.LandingCost, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetVariant fetches one variant together with its parent's category.
func (s *Store) GetVariant(ctx context.Context, id uuid.UUID) (Variant, string, error) {
	if s == nil || s.Pool == nil {
		return Variant{}, "", errors.New("catalog store not configured")
	}
	var (
		v        Variant
		category string
	)
	err := s.Pool.QueryRow(ctx, `SELECT v.id, v.product_id, v.name,
		v.retail_price, v.wholesale_price, v.stock, p.category_id
		FROM product_variants v JOIN products p ON p.id = v.product_id
		WHERE v.id = $1`, id).
		Scan(&v.ID, &v.ProductID, &v.Name, &v.RetailPrice, &v.WholesalePrice,
			&v.Stock, &category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Variant{}, "", ErrNotFound
		}
		return Variant{}, "", fmt.Errorf("get variant: %w", err)
	}
	return v, category, nil
}

// GetService fetches one service item by id.
func (s *Store) GetService(ctx context.Context, id uuid.UUID) (ServiceItem, error) {
	if s == nil || s.Pool == nil {
		return ServiceItem{}, errors.New("catalog store not configured")
	}
	var it ServiceItem
	err := s.Pool.QueryRow(ctx, `SELECT id, name, price FROM service_items WHERE id = $1`, id).
		Scan(&it.ID, &it.Name, &it.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ServiceItem{}, ErrNotFound
		}
		return ServiceItem{}, fmt.Errorf("get service item: %w", err)
	}
	return it, nil
}

// GetBundle fetches one bundle by id.
func (s *Store) GetBundle(ctx context.Context, id uuid.UUID) (Bundle, error) {
	if s == nil || s.Pool == nil {
		return Bundle{}, errors.New("catalog store not configured")
	}
	var b Bundle
	err := s.Pool.QueryRow(ctx, `SELECT id, name, price FROM bundles WHERE id = $1`, id).
		Scan(&b.ID, &b.Name, &b.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Bundle{}, ErrNotFound
		}
		return Bundle{}, fmt.Errorf("get bundle: %w", err)
	}
	return b, nil
}
