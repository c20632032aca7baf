package address

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput(isDefault bool) CreateInput {
	return CreateInput{
		Type:      TypeHome,
		FullName:  "Ada Lovelace",
		Phone:     "555-0101",
		Line1:     "1 Analytical Way",
		City:      "London",
		State:     "LN",
		Zip:       "10001",
		Country:   "UK",
		IsDefault: isDefault,
	}
}

func defaults(t *testing.T, svc *Service, userID int) []int {
	t.Helper()
	addrs, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	var ids []int
	for _, a := range addrs {
		if a.IsDefault {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestFirstAddressIsForcedDefault(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	a, err := svc.Create(context.Background(), 1, validInput(false))
	require.NoError(t, err)
	assert.True(t, a.IsDefault, "first address must be default even when not requested")
	assert.Equal(t, []int{a.ID}, defaults(t, svc, 1))
}

func TestCreateDefaultClearsSiblings(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository())

	first, err := svc.Create(ctx, 1, validInput(false))
	require.NoError(t, err)
	second, err := svc.Create(ctx, 1, validInput(true))
	require.NoError(t, err)

	assert.True(t, second.IsDefault)
	assert.Equal(t, []int{second.ID}, defaults(t, svc, 1))

	got, err := svc.repo.GetByOwner(ctx, 1, first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)
}

func TestSetDefaultMovesTheFlag(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository())

	first, err := svc.Create(ctx, 1, validInput(false))
	require.NoError(t, err)
	second, err := svc.Create(ctx, 1, validInput(false))
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	promoted, err := svc.SetDefault(ctx, 1, second.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsDefault)
	assert.Equal(t, []int{second.ID}, defaults(t, svc, 1))

	// idempotent: promoting the current default changes nothing
	again, err := svc.SetDefault(ctx, 1, second.ID)
	require.NoError(t, err)
	assert.True(t, again.IsDefault)
	assert.Equal(t, []int{second.ID}, defaults(t, svc, 1))

	_ = first
}

func TestDeleteDefaultWithSiblingsIsRejected(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository())

	first, err := svc.Create(ctx, 1, validInput(true))
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, validInput(false))
	require.NoError(t, err)

	err = svc.Delete(ctx, 1, first.ID)
	assert.ErrorIs(t, err, ErrDefaultInUse)

	// still present and still default
	assert.Equal(t, []int{first.ID}, defaults(t, svc, 1))
}

func TestDeleteLastAddressIsAllowed(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository())

	only, err := svc.Create(ctx, 1, validInput(true))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, only.ID))
	addrs, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, addrs)
}

func TestUpdateMayUnsetDefault(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository())

	a, err := svc.Create(ctx, 1, validInput(true))
	require.NoError(t, err)

	in := validInput(false)
	updated, err := svc.Update(ctx, 1, a.ID, in)
	require.NoError(t, err)
	assert.False(t, updated.IsDefault)
	assert.Empty(t, defaults(t, svc, 1))

	// the next promotion restores the invariant
	_, err = svc.SetDefault(ctx, 1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{a.ID}, defaults(t, svc, 1))
}

func TestOwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository())

	mine, err := svc.Create(ctx, 1, validInput(true))
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, validInput(true))
	require.NoError(t, err)

	_, err = svc.SetDefault(ctx, 2, mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(ctx, 2, mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidationAggregatesMessages(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	_, err := svc.Create(context.Background(), 1, CreateInput{Type: TypeHome})
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "phone is required")
	assert.Contains(t, err.Error(), "line1 is required")
}
