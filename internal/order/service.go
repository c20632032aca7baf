package order

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/flamecrumble/storefront-backend/internal/cache"
)

// historyLimit caps the cached order history per user.
const historyLimit = 10

// Service orchestrates checkout and order reads. History and order detail
// reads go through the cache; checkout and status changes invalidate the
// affected keys after the store commit. Cache failures are logged and
// swallowed, the database stays authoritative.
type Service struct {
	repo  Repository
	cache cache.Cache
}

func NewService(repo Repository, c cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

// Create turns the owner's cart into a pending order. On success the cart
// cache entry is dropped before the history entry so a reader can never see
// the old cart alongside the new order.
func (s *Service) Create(ctx context.Context, userID int, shipping ShippingAddress, paymentMethod string) (Order, error) {
	if paymentMethod == "" {
		return Order{}, fmt.Errorf("%w: payment method is required", ErrInvalidInput)
	}
	if shipping.Line1 == "" || shipping.City == "" || shipping.Country == "" {
		return Order{}, fmt.Errorf("%w: shipping address is incomplete", ErrInvalidInput)
	}

	ord, err := s.repo.CreateFromCart(ctx, userID, shipping, paymentMethod)
	if err != nil {
		return Order{}, err
	}

	if err := s.cache.Delete(ctx, cache.CartKey(userID)); err != nil {
		log.Printf("order: cart cache invalidation for user %d failed: %v", userID, err)
	}
	if err := s.cache.Delete(ctx, cache.OrderHistoryKey(userID)); err != nil {
		log.Printf("order: history cache invalidation for user %d failed: %v", userID, err)
	}
	return ord, nil
}

// History returns the owner's most recent orders, preferring the cached
// projection.
func (s *Service) History(ctx context.Context, userID int) ([]Order, error) {
	key := cache.OrderHistoryKey(userID)
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Printf("order: cache get %s failed: %v", key, err)
	} else if ok {
		var orders []Order
		if err := json.Unmarshal(raw, &orders); err == nil {
			return orders, nil
		}
		log.Printf("order: discarding unreadable cache entry %s", key)
	}

	orders, err := s.repo.ListByOwner(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(orders); err == nil {
		if err := s.cache.SetWithTTL(ctx, key, raw, cache.OrderHistoryTTL); err != nil {
			log.Printf("order: cache set %s failed: %v", key, err)
		}
	}
	return orders, nil
}

// Details returns one of the owner's orders. The cache entry is keyed by
// order id alone, so ownership is re-checked on every hit.
func (s *Service) Details(ctx context.Context, userID, orderID int) (Order, error) {
	key := cache.OrderKey(orderID)
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Printf("order: cache get %s failed: %v", key, err)
	} else if ok {
		var ord Order
		if err := json.Unmarshal(raw, &ord); err == nil {
			if ord.UserID != userID {
				return Order{}, ErrNotFound
			}
			return ord, nil
		}
		log.Printf("order: discarding unreadable cache entry %s", key)
	}

	ord, err := s.repo.GetByOwner(ctx, userID, orderID)
	if err != nil {
		return Order{}, err
	}

	if raw, err := json.Marshal(ord); err == nil {
		if err := s.cache.SetWithTTL(ctx, key, raw, cache.OrderTTL); err != nil {
			log.Printf("order: cache set %s failed: %v", key, err)
		}
	}
	return ord, nil
}

// UpdateStatus transitions an order to a new status (admin path) and drops
// the stale detail and history cache entries.
func (s *Service) UpdateStatus(ctx context.Context, orderID int, status string) (Order, error) {
	if !validStatus(status) {
		return Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	ord, err := s.repo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return Order{}, err
	}

	if err := s.cache.Delete(ctx, cache.OrderKey(orderID), cache.OrderHistoryKey(ord.UserID)); err != nil {
		log.Printf("order: cache invalidation for order %d failed: %v", orderID, err)
	}
	return ord, nil
}

// Recent returns the latest orders across all users (admin dashboard).
func (s *Service) Recent(ctx context.Context, limit int) ([]Order, error) {
	return s.repo.Recent(ctx, limit)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
