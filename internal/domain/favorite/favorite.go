package favorite

import (
	"time"

	"github.com/google/uuid"

	"github.com/staynest/service-booking/pkg/domain"
)

// Favorite records that a user saved a property.
type Favorite struct {
	userID     uuid.UUID
	propertyID uuid.UUID
	createdAt  time.Time
}

// NewFavorite creates a new favorite.
func NewFavorite(userID, propertyID uuid.UUID) (*Favorite, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if propertyID == uuid.Nil {
		return nil, domain.NewValidationError("property ID is required")
	}
	return &Favorite{
		userID:     userID,
		propertyID: propertyID,
		createdAt:  time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Favorite from persistence.
func Reconstruct(userID, propertyID uuid.UUID, createdAt time.Time) *Favorite {
	return &Favorite{userID: userID, propertyID: propertyID, createdAt: createdAt}
}

// Getters.
func (f *Favorite) UserID() uuid.UUID     { return f.userID }
func (f *Favorite) PropertyID() uuid.UUID { return f.propertyID }
func (f *Favorite) CreatedAt() time.Time  { return f.createdAt }
