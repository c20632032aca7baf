package wishlist

import (
	"context"
	"encoding/json"
	"log"

	"github.com/flamecrumble/storefront-backend/internal/cache"
	"github.com/flamecrumble/storefront-backend/internal/product"
)

// ProductFinder is the slice of the product service the wishlist needs.
type ProductFinder interface {
	GetByID(ctx context.Context, id int) (product.Product, error)
}

// Service orchestrates wishlist operations with a cached read path under
// wishlist:{userID}.
type Service struct {
	repo     Repository
	products ProductFinder
	cache    cache.Cache
}

func NewService(repo Repository, products ProductFinder, c cache.Cache) *Service {
	return &Service{repo: repo, products: products, cache: c}
}

// Get returns the owner's wishlist; an absent wishlist reads as empty and is
// not cached.
func (s *Service) Get(ctx context.Context, userID int) (Wishlist, error) {
	key := cache.WishlistKey(userID)
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Printf("wishlist: cache get %s failed: %v", key, err)
	} else if ok {
		var wl Wishlist
		if err := json.Unmarshal(raw, &wl); err == nil {
			return wl, nil
		}
		log.Printf("wishlist: discarding unreadable cache entry %s", key)
	}

	wl, err := s.repo.GetByOwner(ctx, userID)
	if err == ErrNotFound {
		return Wishlist{Items: []Item{}}, nil
	}
	if err != nil {
		return Wishlist{}, err
	}

	if raw, err := json.Marshal(wl); err == nil {
		if err := s.cache.SetWithTTL(ctx, key, raw, cache.WishlistTTL); err != nil {
			log.Printf("wishlist: cache set %s failed: %v", key, err)
		}
	}
	return wl, nil
}

// AddItem adds a product once; a second add is a conflict.
func (s *Service) AddItem(ctx context.Context, userID, productID int) (Wishlist, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return Wishlist{}, err
	}

	wl, err := s.repo.AddItem(ctx, userID, productID)
	if err != nil {
		return Wishlist{}, err
	}
	s.invalidate(ctx, userID)
	return wl, nil
}

// RemoveItem removes by product identity; removing an absent product is
// reported as ErrItemNotFound.
func (s *Service) RemoveItem(ctx context.Context, userID, productID int) (Wishlist, error) {
	wl, err := s.repo.RemoveItem(ctx, userID, productID)
	if err != nil {
		return Wishlist{}, err
	}
	s.invalidate(ctx, userID)
	return wl, nil
}

func (s *Service) invalidate(ctx context.Context, userID int) {
	if err := s.cache.Delete(ctx, cache.WishlistKey(userID)); err != nil {
		log.Printf("wishlist: cache invalidation for user %d failed: %v", userID, err)
	}
}
