package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	favoriteDomain "github.com/staynest/service-booking/internal/domain/favorite"
	propertyDomain "github.com/staynest/service-booking/internal/domain/property"
)

// FavoriteDTO is the API response representation of a saved property.
type FavoriteDTO struct {
	PropertyID uuid.UUID    `json:"property_id"`
	Property   *PropertyDTO `json:"property,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// ToggleFavoriteResult reports the favorite state after a toggle.
type ToggleFavoriteResult struct {
	PropertyID uuid.UUID `json:"property_id"`
	Favorited  bool      `json:"favorited"`
}

// FavoriteService implements use cases for saved properties.
type FavoriteService struct {
	repo       favoriteDomain.FavoriteRepository
	properties propertyDomain.PropertyRepository
	logger     *zap.Logger
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(
	repo favoriteDomain.FavoriteRepository,
	properties propertyDomain.PropertyRepository,
	logger *zap.Logger,
) *FavoriteService {
	return &FavoriteService{repo: repo, properties: properties, logger: logger}
}

// ToggleFavorite saves the property for the user, or removes it if already saved.
func (s *FavoriteService) ToggleFavorite(ctx context.Context, userID, propertyID uuid.UUID) (*ToggleFavoriteResult, error) {
	if _, err := s.properties.FindByID(ctx, propertyID); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, userID, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to check favorite: %w", err)
	}
	if exists {
		if err := s.repo.Delete(ctx, userID, propertyID); err != nil {
			return nil, fmt.Errorf("failed to remove favorite: %w", err)
		}
		return &ToggleFavoriteResult{PropertyID: propertyID, Favorited: false}, nil
	}

	fav, err := favoriteDomain.NewFavorite(userID, propertyID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, fav); err != nil {
		return nil, fmt.Errorf("failed to save favorite: %w", err)
	}
	return &ToggleFavoriteResult{PropertyID: propertyID, Favorited: true}, nil
}

// ListFavorites returns the user's saved properties, newest first. Listings that no longer
// resolve are returned without their details.
func (s *FavoriteService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]FavoriteDTO, error) {
	favs, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	dtos := make([]FavoriteDTO, 0, len(favs))
	for _, f := range favs {
		dto := FavoriteDTO{PropertyID: f.PropertyID(), CreatedAt: f.CreatedAt()}
		if prop, err := s.properties.FindByID(ctx, f.PropertyID()); err == nil {
			p := toPropertyDTO(prop)
			dto.Property = &p
		} else {
			s.logger.Debug("favorite property unavailable",
				zap.String("property_id", f.PropertyID().String()),
				zap.Error(err),
			)
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

// IsFavorited reports whether the user saved the property.
func (s *FavoriteService) IsFavorited(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, userID, propertyID)
}

// FavoriteCount returns how many users saved the property.
func (s *FavoriteService) FavoriteCount(ctx context.Context, propertyID uuid.UUID) (int64, error) {
	return s.repo.CountByPropertyID(ctx, propertyID)
}
