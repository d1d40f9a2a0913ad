package application

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	propertyDomain "github.com/staynest/service-booking/internal/domain/property"
	"github.com/staynest/service-booking/pkg/domain"
)

// DefaultSearchPageSize is the page size of property search when none is given.
const DefaultSearchPageSize = 9

// PropertyRequest is the request DTO for creating or replacing a listing.
type PropertyRequest struct {
	HostID        uuid.UUID       `json:"host_id"`
	Name          string          `json:"name" validate:"required,max=255"`
	Description   string          `json:"description" validate:"required,min=10"`
	Street        string          `json:"street" validate:"required,max=255"`
	City          string          `json:"city" validate:"required,max=100"`
	State         string          `json:"state" validate:"required,max=100"`
	Country       string          `json:"country" validate:"omitempty,max=100"`
	ZipCode       string          `json:"zip_code" validate:"required,max=20"`
	PricePerNight decimal.Decimal `json:"price_per_night" validate:"money"`
	MaxGuests     int             `json:"max_guests" validate:"min=1"`
	NumBedrooms   int             `json:"num_bedrooms" validate:"min=1"`
	Images        []string        `json:"images" validate:"min=1,max=10,dive,required,url"`
}

func (r PropertyRequest) details() propertyDomain.Details {
	return propertyDomain.Details{
		Name:        r.Name,
		Description: r.Description,
		Address: propertyDomain.Address{
			Street:  r.Street,
			City:    r.City,
			State:   r.State,
			Country: r.Country,
			ZipCode: r.ZipCode,
		},
		PricePerNight: r.PricePerNight,
		MaxGuests:     r.MaxGuests,
		NumBedrooms:   r.NumBedrooms,
		Images:        r.Images,
	}
}

// SearchPropertiesRequest filters public property search. Dates filter only when both are set.
type SearchPropertiesRequest struct {
	City     string
	MinPrice *decimal.Decimal `validate:"omitempty,nonneg_money"`
	MaxPrice *decimal.Decimal `validate:"omitempty,nonneg_money"`
	Guests   int              `validate:"omitempty,min=1"`
	CheckIn  *civil.Date
	CheckOut *civil.Date
	Page     int
	PageSize int `validate:"omitempty,max=100"`
}

// PropertyDTO is the API response representation of a listing.
type PropertyDTO struct {
	ID            uuid.UUID              `json:"id"`
	HostID        uuid.UUID              `json:"host_id"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	Address       propertyDomain.Address `json:"address"`
	PricePerNight decimal.Decimal        `json:"price_per_night"`
	MaxGuests     int                    `json:"max_guests"`
	NumBedrooms   int                    `json:"num_bedrooms"`
	Images        []string               `json:"images"`
	Status        string                 `json:"status"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// PropertyService implements use cases for listing management and search.
type PropertyService struct {
	repo      propertyDomain.PropertyRepository
	bookings  bookingDomain.BookingRepository
	validator *RequestValidator
	logger    *zap.Logger
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(
	repo propertyDomain.PropertyRepository,
	bookings bookingDomain.BookingRepository,
	validator *RequestValidator,
	logger *zap.Logger,
) *PropertyService {
	return &PropertyService{repo: repo, bookings: bookings, validator: validator, logger: logger}
}

// CreateProperty creates a listing for actorID, who must be the requested host.
func (s *PropertyService) CreateProperty(ctx context.Context, actorID uuid.UUID, req PropertyRequest) (*PropertyDTO, error) {
	if req.HostID == uuid.Nil {
		req.HostID = actorID
	}
	if req.HostID != actorID {
		return nil, domain.NewForbiddenError("you can only create listings for yourself")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	prop, err := propertyDomain.NewProperty(req.HostID, req.details())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, prop); err != nil {
		return nil, fmt.Errorf("failed to save property: %w", err)
	}

	s.logger.Info("property created",
		zap.String("property_id", prop.ID().String()),
		zap.String("host_id", prop.HostID().String()),
	)
	result := toPropertyDTO(prop)
	return &result, nil
}

// GetProperty retrieves a listing by ID.
func (s *PropertyService) GetProperty(ctx context.Context, propertyID uuid.UUID) (*PropertyDTO, error) {
	prop, err := s.repo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	result := toPropertyDTO(prop)
	return &result, nil
}

// ListHostProperties returns every listing of a host, active or not.
func (s *PropertyService) ListHostProperties(ctx context.Context, hostID uuid.UUID) ([]PropertyDTO, error) {
	props, err := s.repo.FindByHostID(ctx, hostID)
	if err != nil {
		return nil, err
	}
	dtos := make([]PropertyDTO, len(props))
	for i, p := range props {
		dtos[i] = toPropertyDTO(p)
	}
	return dtos, nil
}

// UpdateProperty replaces a listing's details. Only its host may do so.
func (s *PropertyService) UpdateProperty(ctx context.Context, actorID, propertyID uuid.UUID, req PropertyRequest) (*PropertyDTO, error) {
	prop, err := s.repo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !prop.IsHostedBy(actorID) {
		return nil, domain.NewForbiddenError("property does not belong to this host")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := prop.Update(req.details()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, prop); err != nil {
		return nil, err
	}

	result := toPropertyDTO(prop)
	return &result, nil
}

// DeactivateProperty hides a listing from search. Existing bookings are untouched.
func (s *PropertyService) DeactivateProperty(ctx context.Context, actorID, propertyID uuid.UUID) error {
	prop, err := s.repo.FindByID(ctx, propertyID)
	if err != nil {
		return err
	}
	if !prop.IsHostedBy(actorID) {
		return domain.NewForbiddenError("property does not belong to this host")
	}
	prop.Deactivate()
	if err := s.repo.Update(ctx, prop); err != nil {
		return err
	}

	s.logger.Info("property deactivated", zap.String("property_id", propertyID.String()))
	return nil
}

// SearchProperties returns active listings matching the filters. When both dates are given,
// listings holding an accepted booking that overlaps them are excluded.
func (s *PropertyService) SearchProperties(ctx context.Context, req SearchPropertiesRequest) (*domain.PaginatedResult[PropertyDTO], error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.MinPrice != nil && req.MaxPrice != nil && req.MinPrice.GreaterThan(*req.MaxPrice) {
		return nil, domain.NewValidationError("min_price must not exceed max_price")
	}

	page, limit := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultSearchPageSize
	}

	criteria := propertyDomain.SearchCriteria{
		Location:  req.City,
		MinPrice:  req.MinPrice,
		MaxPrice:  req.MaxPrice,
		MinGuests: req.Guests,
	}
	if req.CheckIn != nil && req.CheckOut != nil {
		stay, err := bookingDomain.NewDateRange(*req.CheckIn, *req.CheckOut)
		if err != nil {
			return nil, err
		}
		unavailable, err := s.bookings.FindUnavailablePropertyIDs(ctx, stay)
		if err != nil {
			return nil, fmt.Errorf("failed to load unavailable properties: %w", err)
		}
		criteria.ExcludeIDs = unavailable
	}

	props, total, err := s.repo.Search(ctx, criteria, page, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]PropertyDTO, len(props))
	for i, p := range props {
		dtos[i] = toPropertyDTO(p)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

func toPropertyDTO(p *propertyDomain.Property) PropertyDTO {
	return PropertyDTO{
		ID:            p.ID(),
		HostID:        p.HostID(),
		Name:          p.Name(),
		Description:   p.Description(),
		Address:       p.Address(),
		PricePerNight: p.PricePerNight(),
		MaxGuests:     p.MaxGuests(),
		NumBedrooms:   p.NumBedrooms(),
		Images:        p.Images(),
		Status:        string(p.Status()),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}
