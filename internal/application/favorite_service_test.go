package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staynest/service-booking/pkg/domain"
)

func TestToggleFavorite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	prop := f.createProperty(t, uuid.New(), "Sonoma", "100")
	user := uuid.New()

	res, err := f.favorites.ToggleFavorite(ctx, user, prop.ID)
	require.NoError(t, err)
	assert.True(t, res.Favorited)

	ok, err := f.favorites.IsFavorited(ctx, user, prop.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.favorites.ToggleFavorite(ctx, uuid.New(), prop.ID)
	require.NoError(t, err)
	count, err := f.favorites.FavoriteCount(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	res, err = f.favorites.ToggleFavorite(ctx, user, prop.ID)
	require.NoError(t, err)
	assert.False(t, res.Favorited)

	ok, err = f.favorites.IsFavorited(ctx, user, prop.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.favorites.ToggleFavorite(ctx, user, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListFavorites_IncludesDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	a := f.createProperty(t, uuid.New(), "Sonoma", "100")
	b := f.createProperty(t, uuid.New(), "Napa", "100")

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		_, err := f.favorites.ToggleFavorite(ctx, user, id)
		require.NoError(t, err)
	}

	favs, err := f.favorites.ListFavorites(ctx, user)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	for _, fav := range favs {
		require.NotNil(t, fav.Property)
		assert.Equal(t, fav.PropertyID, fav.Property.ID)
	}

	empty, err := f.favorites.ListFavorites(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
