package cart

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNotFound means the owner has no cart at all.
	ErrNotFound = errors.New("cart not found")
	// ErrItemNotFound means the cart exists but the addressed line does not.
	ErrItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be a positive number")
)

type Repository interface {
	// GetByOwner returns ErrNotFound when the owner has no cart.
	GetByOwner(ctx context.Context, userID int) (Cart, error)
	// AddItem lazily creates the cart and merges quantity into an existing
	// line for the same product.
	AddItem(ctx context.Context, userID, productID, quantity int) (Cart, error)
	UpdateItem(ctx context.Context, userID, itemID, quantity int) (Cart, error)
	RemoveItem(ctx context.Context, userID, itemID int) (Cart, error)
	DeleteByOwner(ctx context.Context, userID int) error
}

// InMemoryRepository is used by tests and local scenarios.
type InMemoryRepository struct {
	mu         sync.Mutex
	byUser     map[int]*Cart
	nextCartID int
	nextItemID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byUser: make(map[int]*Cart), nextCartID: 1, nextItemID: 1}
}

func (r *InMemoryRepository) GetByOwner(ctx context.Context, userID int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	crt, ok := r.byUser[userID]
	if !ok {
		return Cart{}, ErrNotFound
	}
	return cloneCart(crt), nil
}

func (r *InMemoryRepository) AddItem(ctx context.Context, userID, productID, quantity int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	crt, ok := r.byUser[userID]
	if !ok {
		crt = &Cart{ID: r.nextCartID, UserID: userID, Items: []Item{}}
		r.nextCartID++
		r.byUser[userID] = crt
	}
	for i, it := range crt.Items {
		if it.ProductID == productID {
			crt.Items[i].Quantity += quantity
			return cloneCart(crt), nil
		}
	}
	crt.Items = append(crt.Items, Item{ID: r.nextItemID, ProductID: productID, Quantity: quantity})
	r.nextItemID++
	return cloneCart(crt), nil
}

func (r *InMemoryRepository) UpdateItem(ctx context.Context, userID, itemID, quantity int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	crt, ok := r.byUser[userID]
	if !ok {
		return Cart{}, ErrNotFound
	}
	for i, it := range crt.Items {
		if it.ID == itemID {
			crt.Items[i].Quantity = quantity
			return cloneCart(crt), nil
		}
	}
	return Cart{}, ErrItemNotFound
}

func (r *InMemoryRepository) RemoveItem(ctx context.Context, userID, itemID int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	crt, ok := r.byUser[userID]
	if !ok {
		return Cart{}, ErrNotFound
	}
	for i, it := range crt.Items {
		if it.ID == itemID {
			crt.Items = append(crt.Items[:i], crt.Items[i+1:]...)
			return cloneCart(crt), nil
		}
	}
	return Cart{}, ErrItemNotFound
}

func (r *InMemoryRepository) DeleteByOwner(ctx context.Context, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUser[userID]; !ok {
		return ErrNotFound
	}
	delete(r.byUser, userID)
	return nil
}

func cloneCart(c *Cart) Cart {
	out := Cart{ID: c.ID, UserID: c.UserID, Items: make([]Item, len(c.Items))}
	copy(out.Items, c.Items)
	return out
}
