package address

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound = errors.New("address not found")
	ErrInvalid  = errors.New("invalid address")
	// ErrDefaultInUse rejects deleting the default address while the owner
	// still has others; the caller must reassign the default first.
	ErrDefaultInUse = errors.New("cannot delete default address while other addresses exist")
)

// Repository exposes the persistence primitives the default-selection logic
// needs. Insert, Update and PromoteDefault are atomic units: when
// clearSiblings is set the implementation must unset every other default of
// the owner and apply the write without any observable multi-default state.
type Repository interface {
	ListByOwner(ctx context.Context, userID int) ([]Address, error)
	GetByOwner(ctx context.Context, userID, id int) (Address, error)
	CountByOwner(ctx context.Context, userID int) (int, error)
	CountSiblings(ctx context.Context, userID, excludeID int) (int, error)
	Insert(ctx context.Context, a Address, clearSiblings bool) (Address, error)
	Update(ctx context.Context, a Address, clearSiblings bool) (Address, error)
	Delete(ctx context.Context, userID, id int) error
	PromoteDefault(ctx context.Context, userID, id int) (Address, error)
}

// InMemoryRepository is used by tests; a single mutex stands in for the
// database transaction.
type InMemoryRepository struct {
	mu     sync.Mutex
	byUser map[int][]Address
	nextID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byUser: make(map[int][]Address), nextID: 1}
}

func (r *InMemoryRepository) ListByOwner(ctx context.Context, userID int) ([]Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	addrs := r.byUser[userID]
	out := make([]Address, len(addrs))
	copy(out, addrs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsDefault && !out[j].IsDefault
	})
	return out, nil
}

func (r *InMemoryRepository) GetByOwner(ctx context.Context, userID, id int) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byUser[userID] {
		if a.ID == id {
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) CountByOwner(ctx context.Context, userID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser[userID]), nil
}

func (r *InMemoryRepository) CountSiblings(ctx context.Context, userID, excludeID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.byUser[userID] {
		if a.ID != excludeID {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryRepository) Insert(ctx context.Context, a Address, clearSiblings bool) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if clearSiblings {
		r.clearDefaults(a.UserID, 0)
	}
	a.ID = r.nextID
	r.nextID++
	r.byUser[a.UserID] = append(r.byUser[a.UserID], a)
	return a, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, upd Address, clearSiblings bool) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	addrs := r.byUser[upd.UserID]
	for i, a := range addrs {
		if a.ID == upd.ID {
			if clearSiblings {
				r.clearDefaults(upd.UserID, upd.ID)
			}
			if upd.CreatedAt == "" {
				upd.CreatedAt = a.CreatedAt
			}
			r.byUser[upd.UserID][i] = upd
			return upd, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(ctx context.Context, userID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	addrs := r.byUser[userID]
	for i, a := range addrs {
		if a.ID == id {
			r.byUser[userID] = append(addrs[:i], addrs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) PromoteDefault(ctx context.Context, userID, id int) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	addrs := r.byUser[userID]
	for i, a := range addrs {
		if a.ID == id {
			r.clearDefaults(userID, id)
			a.IsDefault = true
			r.byUser[userID][i] = a
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

// caller holds the lock
func (r *InMemoryRepository) clearDefaults(userID, excludeID int) {
	for i, a := range r.byUser[userID] {
		if a.ID != excludeID && a.IsDefault {
			a.IsDefault = false
			r.byUser[userID][i] = a
		}
	}
}
