package cart

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
		{ID: 1, Name: "Beeswax Candle", Price: 12.5, Category: product.CategoryCandles, Stock: 10, Image: "candle.png"},
		{ID: 2, Name: "Ginger Cookie", Price: 3.0, Category: product.CategoryCookies, Stock: 10, Image: "cookie.png"},
	})
	store := cache.NewMemoryCache()
	return NewService(NewInMemoryRepository(), products, store), store
}

func TestAddMergesQuantityPerProduct(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.AddItem(ctx, 7, 1, 2)
	require.NoError(t, err)
	crt, err := svc.AddItem(ctx, 7, 1, 3)
	require.NoError(t, err)

	require.Len(t, crt.Items, 1, "same product must merge into one line")
	assert.Equal(t, 5, crt.Items[0].Quantity)
}

func TestAddRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.AddItem(ctx, 7, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = svc.AddItem(ctx, 7, 1, -2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = svc.AddItem(ctx, 7, 999, 1)
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestUpdateAndRemoveByItemID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	crt, err := svc.AddItem(ctx, 7, 1, 2)
	require.NoError(t, err)
	itemID := crt.Items[0].ID

	crt, err = svc.UpdateItem(ctx, 7, itemID, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, crt.Items[0].Quantity)

	_, err = svc.UpdateItem(ctx, 7, itemID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	crt, err = svc.RemoveItem(ctx, 7, itemID)
	require.NoError(t, err)
	assert.Empty(t, crt.Items)

	// removing again is an error, never silent
	_, err = svc.RemoveItem(ctx, 7, itemID)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestAbsentCartReadsEmpty(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	crt, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.NotNil(t, crt.Items)
	assert.Empty(t, crt.Items)

	// absent carts are not negative-cached
	_, ok, err := store.Get(ctx, cache.CartKey(7))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMutationInvalidatesCachedCart(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	_, err := svc.AddItem(ctx, 7, 1, 1)
	require.NoError(t, err)

	// populate the cache
	_, err = svc.Get(ctx, 7)
	require.NoError(t, err)
	_, ok, err := store.Get(ctx, cache.CartKey(7))
	require.NoError(t, err)
	require.True(t, ok)

	// mutation drops the entry; the next read sees the new state
	_, err = svc.AddItem(ctx, 7, 2, 1)
	require.NoError(t, err)
	_, ok, err = store.Get(ctx, cache.CartKey(7))
	require.NoError(t, err)
	assert.False(t, ok)

	crt, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, crt.Items, 2)
}
