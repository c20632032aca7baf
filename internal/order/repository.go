package order

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/flamecrumble/storefront-backend/internal/cart"
	"github.com/flamecrumble/storefront-backend/internal/product"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrEmptyCart rejects checkout of an absent or empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrProductUnavailable fails the whole order when a cart line references
	// a product that no longer exists. Degrading the total instead would
	// silently ship mispriced items.
	ErrProductUnavailable = errors.New("a product in the cart is no longer available")
	ErrInsufficientStock  = errors.New("insufficient stock for a product in the cart")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidInput       = errors.New("invalid order input")
)

type Repository interface {
	// CreateFromCart snapshots the owner's cart into a pending order,
	// decrements stock per line and deletes the cart, all as one atomic unit.
	CreateFromCart(ctx context.Context, userID int, shipping ShippingAddress, paymentMethod string) (Order, error)
	// ListByOwner returns up to limit orders, newest first.
	ListByOwner(ctx context.Context, userID, limit int) ([]Order, error)
	GetByOwner(ctx context.Context, userID, orderID int) (Order, error)
	// UpdateStatus transitions an order and returns the updated record.
	UpdateStatus(ctx context.Context, orderID int, status string) (Order, error)
	Recent(ctx context.Context, limit int) ([]Order, error)
	Count(ctx context.Context) (int, error)
}

// InMemoryRepository mirrors the transactional checkout semantics over
// in-memory cart and product repositories for tests.
type InMemoryRepository struct {
	mu       sync.Mutex
	carts    *cart.InMemoryRepository
	products *product.InMemoryRepository
	orders   []Order
	nextID   int
}

func NewInMemoryRepository(carts *cart.InMemoryRepository, products *product.InMemoryRepository) *InMemoryRepository {
	return &InMemoryRepository{carts: carts, products: products, nextID: 1}
}

func (r *InMemoryRepository) CreateFromCart(ctx context.Context, userID int, shipping ShippingAddress, paymentMethod string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	crt, err := r.carts.GetByOwner(ctx, userID)
	if err != nil || len(crt.Items) == 0 {
		return Order{}, ErrEmptyCart
	}

	// resolve and check every line before touching anything
	resolved := make([]product.Product, len(crt.Items))
	for i, it := range crt.Items {
		p, err := r.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return Order{}, ErrProductUnavailable
		}
		if p.Stock < it.Quantity {
			return Order{}, ErrInsufficientStock
		}
		resolved[i] = p
	}

	total := 0.0
	items := make([]Item, len(crt.Items))
	for i, it := range crt.Items {
		p := resolved[i]
		p.Stock -= it.Quantity
		if _, err := r.products.Update(ctx, p.ID, p); err != nil {
			return Order{}, err
		}
		items[i] = Item{ProductID: p.ID, Name: p.Name, Quantity: it.Quantity, Price: p.Price}
		total += p.Price * float64(it.Quantity)
	}

	ord := Order{
		ID:              r.nextID,
		UserID:          userID,
		Items:           items,
		Total:           total,
		Status:          StatusPending,
		ShippingAddress: shipping,
		PaymentMethod:   paymentMethod,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	r.nextID++
	r.orders = append(r.orders, ord)

	if err := r.carts.DeleteByOwner(ctx, userID); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *InMemoryRepository) ListByOwner(ctx context.Context, userID, limit int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) GetByOwner(ctx context.Context, userID, orderID int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == orderID && o.UserID == userID {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) UpdateStatus(ctx context.Context, orderID int, status string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.orders {
		if o.ID == orderID {
			o.Status = status
			o.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
			r.orders[i] = o
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) Recent(ctx context.Context, limit int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Order, len(r.orders))
	copy(out, r.orders)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders), nil
}
