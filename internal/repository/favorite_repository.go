package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	favoriteDomain "github.com/staynest/service-booking/internal/domain/favorite"
)

// FavoriteModel is the GORM model for the favorites table.
type FavoriteModel struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	PropertyID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (FavoriteModel) TableName() string { return "favorites" }

// GormFavoriteRepository implements FavoriteRepository using GORM.
type GormFavoriteRepository struct {
	db *gorm.DB
}

// NewGormFavoriteRepository creates a new GormFavoriteRepository.
func NewGormFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

// Exists reports whether the user saved the property.
func (r *GormFavoriteRepository) Exists(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&FavoriteModel{}).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}

// Save persists a favorite. Saving one that already exists is a no-op.
func (r *GormFavoriteRepository) Save(ctx context.Context, fav *favoriteDomain.Favorite) error {
	model := toFavoriteModel(fav)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model).Error
}

// Delete removes a favorite.
func (r *GormFavoriteRepository) Delete(ctx context.Context, userID, propertyID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Delete(&FavoriteModel{}).Error
}

// FindByUserID returns all favorites of a user, newest first.
func (r *GormFavoriteRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*favoriteDomain.Favorite, error) {
	var models []FavoriteModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	favs := make([]*favoriteDomain.Favorite, len(models))
	for i, m := range models {
		favs[i] = favoriteDomain.Reconstruct(m.UserID, m.PropertyID, m.CreatedAt)
	}
	return favs, nil
}

// CountByPropertyID returns how many users saved the property.
func (r *GormFavoriteRepository) CountByPropertyID(ctx context.Context, propertyID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&FavoriteModel{}).Where("property_id = ?", propertyID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return count, nil
}

func toFavoriteModel(f *favoriteDomain.Favorite) FavoriteModel {
	return FavoriteModel{
		UserID:     f.UserID(),
		PropertyID: f.PropertyID(),
		CreatedAt:  f.CreatedAt(),
	}
}
