package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Reader captures the lookups the catalog service needs from storage.
type Reader interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (Product, error)
	GetVariant(ctx context.Context, id uuid.UUID) (Variant, string, error)
	GetService(ctx context.Context, id uuid.UUID) (ServiceItem, error)
	GetBundle(ctx context.Context, id uuid.UUID) (Bundle, error)
}

// Service resolves catalog references to unit prices for draft lines and
// serves the product read surface.
type Service struct {
	Store Reader
	Cache *Cache
	Log   zerolog.Logger
}

// Products returns the product list, serving from cache when possible.
func (s *Service) Products(ctx context.Context) ([]Product, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("catalog service not configured")
	}
	var cached []Product
	hit, err := s.Cache.GetJSON(ctx, productsKey, &cached)
	if err != nil {
		s.Log.Debug().Err(err).Msg("catalog cache read failed")
	}
	if hit {
		return cached, nil
	}
	products, err := s.Store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.SetJSON(ctx, productsKey, products); err != nil {
		s.Log.Debug().Err(err).Msg("catalog cache write failed")
	}
	return products, nil
}

// Product fetches one product by id.
func (s *Service) Product(ctx context.Context, id uuid.UUID) (Product, error) {
	if s == nil || s.Store == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	return s.Store.GetProduct(ctx, id)
}

// Resolve maps an item reference to its pricing identity for the given sale
// type. Wholesale drafts read wholesale prices; services and bundles carry a
// single price for both.
func (s *Service) Resolve(ctx context.Context, itemType ItemType, id uuid.UUID, sale SaleType) (Ref, error) {
	if s == nil || s.Store == nil {
		return Ref{}, errors.New("catalog service not configured")
	}
	if !sale.Valid() {
		sale = SaleRetail
	}
	switch itemType {
	case ItemProduct:
		p, err := s.Store.GetProduct(ctx, id)
		if err != nil {
			return Ref{}, err
		}
		return Ref{
			Type:       ItemProduct,
			ID:         p.ID,
			ProductID:  p.ID,
			CategoryID: p.CategoryID,
			Name:       p.Name,
			UnitPrice:  priceFor(sale, p.RetailPrice, p.WholesalePrice),
		}, nil
	case ItemVariant:
		v, category, err := s.Store.GetVariant(ctx, id)
		if err != nil {
			return Ref{}, err
		}
		return Ref{
			Type:       ItemVariant,
			ID:         v.ID,
			ProductID:  v.ProductID,
			CategoryID: category,
			Name:       v.Name,
			UnitPrice:  priceFor(sale, v.RetailPrice, v.WholesalePrice),
		}, nil
	case ItemService:
		it, err := s.Store.GetService(ctx, id)
		if err != nil {
			return Ref{}, err
		}
		return Ref{Type: ItemService, ID: it.ID, ProductID: it.ID, Name: it.Name, UnitPrice: it.Price}, nil
	case ItemBundle:
		b, err := s.Store.GetBundle(ctx, id)
		if err != nil {
			return Ref{}, err
		}
		return Ref{Type: ItemBundle, ID: b.ID, ProductID: b.ID, Name: b.Name, UnitPrice: b.Price}, nil
	}
	return Ref{}, errors.New("unknown item type")
}
