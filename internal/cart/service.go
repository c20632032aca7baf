package cart

import (
	"context"
	"encoding/json"
	"log"

	"github.com/flamecrumble/storefront-backend/internal/cache"
	"github.com/flamecrumble/storefront-backend/internal/product"
)

// ProductFinder is the slice of the product service the cart needs: adds are
// rejected when the referenced product does not exist.
type ProductFinder interface {
	GetByID(ctx context.Context, id int) (product.Product, error)
}

// Service orchestrates cart operations. Reads go through the cache under
// cart:{userID}; every mutation invalidates that key after the store commit.
type Service struct {
	repo     Repository
	products ProductFinder
	cache    cache.Cache
}

func NewService(repo Repository, products ProductFinder, c cache.Cache) *Service {
	return &Service{repo: repo, products: products, cache: c}
}

// Get returns the owner's cart. An absent cart is a valid empty result and
// is not cached, so the first add never fights a negative entry.
func (s *Service) Get(ctx context.Context, userID int) (Cart, error) {
	key := cache.CartKey(userID)
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Printf("cart: cache get %s failed: %v", key, err)
	} else if ok {
		var crt Cart
		if err := json.Unmarshal(raw, &crt); err == nil {
			return crt, nil
		}
		log.Printf("cart: discarding unreadable cache entry %s", key)
	}

	crt, err := s.repo.GetByOwner(ctx, userID)
	if err == ErrNotFound {
		return Cart{Items: []Item{}}, nil
	}
	if err != nil {
		return Cart{}, err
	}

	if raw, err := json.Marshal(crt); err == nil {
		if err := s.cache.SetWithTTL(ctx, key, raw, cache.CartTTL); err != nil {
			log.Printf("cart: cache set %s failed: %v", key, err)
		}
	}
	return crt, nil
}

// AddItem merges quantity into the owner's cart line for the product,
// creating cart and line as needed.
func (s *Service) AddItem(ctx context.Context, userID, productID, quantity int) (Cart, error) {
	if quantity <= 0 {
		return Cart{}, ErrInvalidQuantity
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return Cart{}, err
	}

	crt, err := s.repo.AddItem(ctx, userID, productID, quantity)
	if err != nil {
		return Cart{}, err
	}
	s.invalidate(ctx, userID)
	return crt, nil
}

// UpdateItem sets the quantity of a line addressed by its item id.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID, quantity int) (Cart, error) {
	if quantity <= 0 {
		return Cart{}, ErrInvalidQuantity
	}

	crt, err := s.repo.UpdateItem(ctx, userID, itemID, quantity)
	if err != nil {
		return Cart{}, err
	}
	s.invalidate(ctx, userID)
	return crt, nil
}

// RemoveItem deletes a line addressed by its item id. Removing a line that
// does not exist is reported as ErrItemNotFound, never swallowed.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID int) (Cart, error) {
	crt, err := s.repo.RemoveItem(ctx, userID, itemID)
	if err != nil {
		return Cart{}, err
	}
	s.invalidate(ctx, userID)
	return crt, nil
}

func (s *Service) invalidate(ctx context.Context, userID int) {
	if err := s.cache.Delete(ctx, cache.CartKey(userID)); err != nil {
		// fail open: the entry expires with its TTL
		log.Printf("cart: cache invalidation for user %d failed: %v", userID, err)
	}
}
