package product

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/flamecrumble/storefront-backend/internal/cache"
)

// Service orchestrates catalog reads and the admin mutation path. The full
// catalog is served read-through from the cache under one key; every admin
// mutation invalidates that key after the database commit. Cache failures
// are logged and swallowed: the database stays authoritative.
type Service struct {
	repo  Repository
	cache cache.Cache
}

func NewService(repo Repository, c cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

// List returns the full catalog, preferring the cached projection.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	key := cache.ProductsKey()
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Printf("product: cache get %s failed: %v", key, err)
	} else if ok {
		var products []Product
		if err := json.Unmarshal(raw, &products); err == nil {
			return products, nil
		}
		// corrupt entry; fall through to the database
		log.Printf("product: discarding unreadable cache entry %s", key)
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(products); err == nil {
		if err := s.cache.SetWithTTL(ctx, key, raw, cache.ProductsTTL); err != nil {
			log.Printf("product: cache set %s failed: %v", key, err)
		}
	}
	return products, nil
}

func (s *Service) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	if !validCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalid, category)
	}
	return s.repo.ListByCategory(ctx, category)
}

func (s *Service) ListFeatured(ctx context.Context) ([]Product, error) {
	return s.repo.ListFeatured(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Create adds a catalog entry (admin path).
func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if err := validate(p); err != nil {
		return Product{}, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	p.CreatedAt = now
	p.UpdatedAt = now

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Product{}, err
	}
	s.invalidateCatalog(ctx)
	return created, nil
}

// Update replaces the mutable attributes of a catalog entry (admin path).
func (s *Service) Update(ctx context.Context, id int, p Product) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	if err := validate(p); err != nil {
		return Product{}, err
	}
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	updated, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return Product{}, err
	}
	s.invalidateCatalog(ctx)
	return updated, nil
}

// Delete removes a catalog entry (admin path).
func (s *Service) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) invalidateCatalog(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.ProductsKey()); err != nil {
		// fail open: the entry expires with its TTL
		log.Printf("product: cache invalidation failed: %v", err)
	}
}

func validate(p Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must be non-negative", ErrInvalid)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must be non-negative", ErrInvalid)
	}
	if !validCategory(p.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalid, p.Category)
	}
	if p.Image == "" {
		return fmt.Errorf("%w: image is required", ErrInvalid)
	}
	return nil
}
