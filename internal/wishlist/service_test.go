package wishlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamecrumble/storefront-backend/internal/cache"
	"github.com/flamecrumble/storefront-backend/internal/product"
)

func newTestService() (*Service, *cache.MemoryCache) {
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Dark Truffle", Price: 4.5, Category: product.CategoryChocolates, Stock: 5, Image: "truffle.png"},
	})
	store := cache.NewMemoryCache()
	return NewService(NewInMemoryRepository(), products, store), store
}

func TestDuplicateAddIsConflict(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	wl, err := svc.AddItem(ctx, 3, 1)
	require.NoError(t, err)
	require.Len(t, wl.Items, 1)

	_, err = svc.AddItem(ctx, 3, 1)
	assert.ErrorIs(t, err, ErrDuplicate)

	wl, err = svc.Get(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, wl.Items, 1, "failed add must not change the list")
}

func TestAddUnknownProductRejected(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.AddItem(context.Background(), 3, 999)
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestRemoveByProductID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.AddItem(ctx, 3, 1)
	require.NoError(t, err)

	wl, err := svc.RemoveItem(ctx, 3, 1)
	require.NoError(t, err)
	assert.Empty(t, wl.Items)

	_, err = svc.RemoveItem(ctx, 3, 1)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestAbsentWishlistReadsEmptyAndIsNotCached(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	wl, err := svc.Get(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, wl.Items)

	_, ok, err := store.Get(ctx, cache.WishlistKey(3))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMutationInvalidatesCachedWishlist(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	_, err := svc.AddItem(ctx, 3, 1)
	require.NoError(t, err)
	_, err = svc.Get(ctx, 3)
	require.NoError(t, err)

	_, ok, err := store.Get(ctx, cache.WishlistKey(3))
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.RemoveItem(ctx, 3, 1)
	require.NoError(t, err)

	_, ok, err = store.Get(ctx, cache.WishlistKey(3))
	require.NoError(t, err)
	assert.False(t, ok)
}
