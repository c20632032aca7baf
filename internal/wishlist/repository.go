package wishlist

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrNotFound = errors.New("wishlist not found")
	// ErrDuplicate rejects adding a product that is already wished for.
	ErrDuplicate = errors.New("product already in wishlist")
	// ErrItemNotFound reports removal of a product that is not on the list.
	ErrItemNotFound = errors.New("product not found in wishlist")
)

type Repository interface {
	// GetByOwner returns ErrNotFound when the owner has no wishlist.
	GetByOwner(ctx context.Context, userID int) (Wishlist, error)
	// AddItem lazily creates the wishlist; a second add of the same product
	// returns ErrDuplicate.
	AddItem(ctx context.Context, userID, productID int) (Wishlist, error)
	// RemoveItem removes by product identity.
	RemoveItem(ctx context.Context, userID, productID int) (Wishlist, error)
}

// InMemoryRepository is used by tests.
type InMemoryRepository struct {
	mu     sync.Mutex
	byUser map[int]*Wishlist
	nextID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byUser: make(map[int]*Wishlist), nextID: 1}
}

func (r *InMemoryRepository) GetByOwner(ctx context.Context, userID int) (Wishlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wl, ok := r.byUser[userID]
	if !ok {
		return Wishlist{}, ErrNotFound
	}
	return clone(wl), nil
}

func (r *InMemoryRepository) AddItem(ctx context.Context, userID, productID int) (Wishlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wl, ok := r.byUser[userID]
	if !ok {
		wl = &Wishlist{ID: r.nextID, UserID: userID, Items: []Item{}}
		r.nextID++
		r.byUser[userID] = wl
	}
	for _, it := range wl.Items {
		if it.ProductID == productID {
			return Wishlist{}, ErrDuplicate
		}
	}
	wl.Items = append(wl.Items, Item{ProductID: productID, AddedAt: time.Now().UTC().Format(time.RFC3339)})
	return clone(wl), nil
}

func (r *InMemoryRepository) RemoveItem(ctx context.Context, userID, productID int) (Wishlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wl, ok := r.byUser[userID]
	if !ok {
		return Wishlist{}, ErrNotFound
	}
	for i, it := range wl.Items {
		if it.ProductID == productID {
			wl.Items = append(wl.Items[:i], wl.Items[i+1:]...)
			return clone(wl), nil
		}
	}
	return Wishlist{}, ErrItemNotFound
}

func clone(w *Wishlist) Wishlist {
	out := Wishlist{ID: w.ID, UserID: w.UserID, Items: make([]Item, len(w.Items))}
	copy(out.Items, w.Items)
	return out
}
