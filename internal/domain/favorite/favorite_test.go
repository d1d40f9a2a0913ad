package favorite

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staynest/service-booking/pkg/domain"
)

func TestNewFavorite(t *testing.T) {
	user, prop := uuid.New(), uuid.New()

	f, err := NewFavorite(user, prop)
	require.NoError(t, err)
	assert.Equal(t, user, f.UserID())
	assert.Equal(t, prop, f.PropertyID())
	assert.False(t, f.CreatedAt().IsZero())

	_, err = NewFavorite(uuid.Nil, prop)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = NewFavorite(user, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
