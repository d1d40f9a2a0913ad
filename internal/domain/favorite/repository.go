package favorite

import (
	"context"

	"github.com/google/uuid"
)

// FavoriteRepository defines persistence operations for favorites.
type FavoriteRepository interface {
	Exists(ctx context.Context, userID, propertyID uuid.UUID) (bool, error)
	Save(ctx context.Context, favorite *Favorite) error
	Delete(ctx context.Context, userID, propertyID uuid.UUID) error
	// FindByUserID returns the user's favorites, newest first.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Favorite, error)
	CountByPropertyID(ctx context.Context, propertyID uuid.UUID) (int64, error)
}
