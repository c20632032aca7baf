package cache

import (
	"context"
	"strconv"
	"time"
)

// Cache is the key-value facade the read paths build on. Entries are
// disposable projections of the database; nothing may ever treat a cache hit
// as authoritative. Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the raw bytes stored under key, or ok=false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// SetWithTTL stores value under key for at most ttl.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// TTLs per resource volatility: the catalog changes rarely, carts and
// wishlists churn with every session, order details are immutable once read.
const (
	ProductsTTL     = time.Hour
	CartTTL         = 30 * time.Minute
	WishlistTTL     = time.Hour
	OrderTTL        = time.Hour
	OrderHistoryTTL = 10 * time.Minute
)

// Key constructors. Every key the system touches is built here so the
// invalidation set of a mutation can be audited in one place.

func ProductsKey() string { return "products" }

func CartKey(userID int) string { return "cart:" + strconv.Itoa(userID) }

func WishlistKey(userID int) string { return "wishlist:" + strconv.Itoa(userID) }

func OrderKey(orderID int) string { return "order:" + strconv.Itoa(orderID) }

func OrderHistoryKey(userID int) string { return "order:history:" + strconv.Itoa(userID) }
