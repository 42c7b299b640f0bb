package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	domainerrors "github.com/nichehunt/nichehunt-server/internal/errors"
)

func TestCollectionService_CreateAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "curator@example.com", "curator").User

	created, err := env.collections.Create(ctx, user.ID, CreateCollectionRequest{
		Name:        "Weekend Reads",
		Description: "Things to try on Saturday",
	})
	require.NoError(t, err)
	assert.False(t, created.IsDefault)
	assert.NotNil(t, created.ProductIDs)

	collections, err := env.collections.ListMine(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, created.ID, collections[0].ID)
}

func TestCollectionService_AddAndRemoveProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "curator@example.com", "curator").User
	categoryID := env.seedCategory(t, "saas")
	product := env.submitProduct(t, user.ID, categoryID, "Collectable")

	collection, err := env.collections.Create(ctx, user.ID, CreateCollectionRequest{Name: "Picks"})
	require.NoError(t, err)

	require.NoError(t, env.collections.AddProduct(ctx, user.ID, collection.ID, product.ID))

	got, err := env.collections.Get(ctx, user.ID, collection.ID)
	require.NoError(t, err)
	assert.Contains(t, got.ProductIDs, product.ID)

	require.NoError(t, env.collections.RemoveProduct(ctx, user.ID, collection.ID, product.ID))

	err = env.collections.RemoveProduct(ctx, user.ID, collection.ID, product.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCollectionService_ToggleSave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "curator@example.com", "curator").User
	categoryID := env.seedCategory(t, "saas")
	product := env.submitProduct(t, user.ID, categoryID, "Saveable")

	// First save creates the default collection on demand.
	result, err := env.collections.ToggleSave(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, result.Saved)

	collections, err := env.collections.ListMine(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.True(t, collections[0].IsDefault)
	assert.Equal(t, domain.DefaultCollectionName, collections[0].Name)
	assert.Contains(t, collections[0].ProductIDs, product.ID)

	// Toggling again removes the product but keeps the collection.
	result, err = env.collections.ToggleSave(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.False(t, result.Saved)

	collections, err = env.collections.ListMine(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.NotContains(t, collections[0].ProductIDs, product.ID)
}

func TestCollectionService_DefaultIsProtected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "curator@example.com", "curator").User
	categoryID := env.seedCategory(t, "saas")
	product := env.submitProduct(t, user.ID, categoryID, "Saveable")

	_, err := env.collections.ToggleSave(ctx, user.ID, product.ID)
	require.NoError(t, err)

	collections, err := env.collections.ListMine(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, collections, 1)
	defaultID := collections[0].ID

	newName := "Renamed"
	_, err = env.collections.Update(ctx, user.ID, defaultID, UpdateCollectionRequest{Name: &newName})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	err = env.collections.Delete(ctx, user.ID, defaultID)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCollectionService_PrivateToOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.registerUser(t, "owner@example.com", "owner").User
	other := env.registerUser(t, "other@example.com", "other").User

	collection, err := env.collections.Create(ctx, owner.ID, CreateCollectionRequest{Name: "Mine"})
	require.NoError(t, err)

	// Collections are private. Another user's lookup answers not found.
	_, err = env.collections.Get(ctx, other.ID, collection.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	err = env.collections.Delete(ctx, other.ID, collection.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
