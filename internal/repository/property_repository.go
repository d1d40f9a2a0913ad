package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	propertyDomain "github.com/staynest/service-booking/internal/domain/property"
	"github.com/staynest/service-booking/pkg/domain"
)

// PropertyModel is the GORM model for the properties table.
type PropertyModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	HostID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name          string          `gorm:"type:varchar(255);not null"`
	Description   string          `gorm:"type:text;not null"`
	Street        string          `gorm:"type:varchar(255);not null"`
	City          string          `gorm:"type:varchar(100);not null;index"`
	State         string          `gorm:"type:varchar(100);not null;index"`
	Country       string          `gorm:"type:varchar(100);not null;default:'USA'"`
	ZipCode       string          `gorm:"type:varchar(20);not null"`
	PricePerNight decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	MaxGuests     int             `gorm:"not null"`
	NumBedrooms   int             `gorm:"not null"`
	Images        json.RawMessage `gorm:"type:jsonb;not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'active';index"`
	Version       int64           `gorm:"not null;default:1"`
	CreatedAt     time.Time       `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt     time.Time       `gorm:"type:timestamptz;not null;default:now()"`
}

func (PropertyModel) TableName() string { return "properties" }

// GormPropertyRepository implements PropertyRepository using GORM.
type GormPropertyRepository struct {
	db *gorm.DB
}

func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*propertyDomain.Property, error) {
	var model PropertyModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Property", id.String())
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}
	return toPropertyDomain(&model)
}

func (r *GormPropertyRepository) FindByHostID(ctx context.Context, hostID uuid.UUID) ([]*propertyDomain.Property, error) {
	var models []PropertyModel
	if err := r.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find host properties: %w", err)
	}
	return toPropertyDomains(models)
}

func (r *GormPropertyRepository) Search(
	ctx context.Context,
	criteria propertyDomain.SearchCriteria,
	page, limit int,
) ([]*propertyDomain.Property, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("status = ?", string(propertyDomain.PropertyStatusActive))
		if loc := strings.TrimSpace(criteria.Location); loc != "" {
			pattern := "%" + escapeLike(loc) + "%"
			db = db.Where("(city ILIKE ? OR state ILIKE ?)", pattern, pattern)
		}
		if criteria.MinPrice != nil {
			db = db.Where("price_per_night >= ?", *criteria.MinPrice)
		}
		if criteria.MaxPrice != nil {
			db = db.Where("price_per_night <= ?", *criteria.MaxPrice)
		}
		if criteria.MinGuests > 0 {
			db = db.Where("max_guests >= ?", criteria.MinGuests)
		}
		if len(criteria.ExcludeIDs) > 0 {
			db = db.Where("id NOT IN ?", criteria.ExcludeIDs)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&PropertyModel{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count properties: %w", err)
	}

	var models []PropertyModel
	if err := r.db.WithContext(ctx).
		Scopes(scope).
		Order("created_at DESC").
		Offset(domain.Offset(page, limit)).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search properties: %w", err)
	}

	props, err := toPropertyDomains(models)
	if err != nil {
		return nil, 0, err
	}
	return props, total, nil
}

func (r *GormPropertyRepository) Save(ctx context.Context, p *propertyDomain.Property) error {
	model, err := toPropertyModel(p)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save property: %w", err)
	}
	return nil
}

func (r *GormPropertyRepository) Update(ctx context.Context, p *propertyDomain.Property) error {
	model, err := toPropertyModel(p)
	if err != nil {
		return err
	}
	previousVersion := p.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&PropertyModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(model)

	if result.Error != nil {
		return fmt.Errorf("failed to update property: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("property was modified by another transaction")
	}
	return nil
}

// escapeLike escapes ILIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// --- Conversions ---

func toPropertyModel(p *propertyDomain.Property) (*PropertyModel, error) {
	images, err := json.Marshal(p.Images())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal images: %w", err)
	}
	addr := p.Address()
	return &PropertyModel{
		ID:            p.ID(),
		HostID:        p.HostID(),
		Name:          p.Name(),
		Description:   p.Description(),
		Street:        addr.Street,
		City:          addr.City,
		State:         addr.State,
		Country:       addr.Country,
		ZipCode:       addr.ZipCode,
		PricePerNight: p.PricePerNight(),
		MaxGuests:     p.MaxGuests(),
		NumBedrooms:   p.NumBedrooms(),
		Images:        images,
		Status:        string(p.Status()),
		Version:       p.Version(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}, nil
}

func toPropertyDomain(m *PropertyModel) (*propertyDomain.Property, error) {
	var images []string
	if len(m.Images) > 0 {
		if err := json.Unmarshal(m.Images, &images); err != nil {
			return nil, fmt.Errorf("failed to unmarshal images: %w", err)
		}
	}
	return propertyDomain.Reconstruct(
		m.ID, m.HostID,
		propertyDomain.Details{
			Name:        m.Name,
			Description: m.Description,
			Address: propertyDomain.Address{
				Street:  m.Street,
				City:    m.City,
				State:   m.State,
				Country: m.Country,
				ZipCode: m.ZipCode,
			},
			PricePerNight: m.PricePerNight,
			MaxGuests:     m.MaxGuests,
			NumBedrooms:   m.NumBedrooms,
			Images:        images,
		},
		propertyDomain.PropertyStatus(m.Status),
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	), nil
}

func toPropertyDomains(models []PropertyModel) ([]*propertyDomain.Property, error) {
	props := make([]*propertyDomain.Property, len(models))
	for i := range models {
		p, err := toPropertyDomain(&models[i])
		if err != nil {
			return nil, err
		}
		props[i] = p
	}
	return props, nil
}
