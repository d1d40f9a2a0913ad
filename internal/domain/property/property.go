package property

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staynest/service-booking/pkg/domain"
)

// PropertyStatus represents the lifecycle state of a listing.
type PropertyStatus string

const (
	PropertyStatusActive   PropertyStatus = "active"
	PropertyStatusInactive PropertyStatus = "inactive"
)

// DefaultCountry is used when a listing omits its country.
const DefaultCountry = "USA"

// MaxImages bounds the number of image URLs a listing may carry.
const MaxImages = 10

// Address is where a property is located.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zip_code"`
}

// Details are the host-editable attributes of a listing.
type Details struct {
	Name          string
	Description   string
	Address       Address
	PricePerNight decimal.Decimal
	MaxGuests     int
	NumBedrooms   int
	Images        []string
}

func (d *Details) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return domain.NewValidationError("property name is required")
	}
	if len(strings.TrimSpace(d.Description)) < 10 {
		return domain.NewValidationError("description must be at least 10 characters")
	}
	if d.Address.Street == "" || d.Address.City == "" || d.Address.State == "" || d.Address.ZipCode == "" {
		return domain.NewValidationError("street, city, state and zip code are required")
	}
	if !d.PricePerNight.IsPositive() {
		return domain.NewValidationError("price per night must be positive")
	}
	if d.PricePerNight.Exponent() < -2 {
		return domain.NewValidationError("price per night must have at most two decimal places")
	}
	if d.MaxGuests < 1 {
		return domain.NewValidationError("max guests must be at least 1")
	}
	if d.NumBedrooms < 1 {
		return domain.NewValidationError("number of bedrooms must be at least 1")
	}
	if len(d.Images) < 1 || len(d.Images) > MaxImages {
		return domain.NewValidationError(fmt.Sprintf("a property needs between 1 and %d images", MaxImages))
	}
	return nil
}

// Property is the aggregate root for a rentable listing.
type Property struct {
	id      uuid.UUID
	hostID  uuid.UUID
	details Details
	status  PropertyStatus
	version int64

	createdAt time.Time
	updatedAt time.Time
}

// NewProperty creates a new active listing owned by hostID.
func NewProperty(hostID uuid.UUID, details Details) (*Property, error) {
	if hostID == uuid.Nil {
		return nil, domain.NewValidationError("host ID is required")
	}
	if details.Address.Country == "" {
		details.Address.Country = DefaultCountry
	}
	if err := details.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Property{
		id:        uuid.New(),
		hostID:    hostID,
		details:   details,
		status:    PropertyStatusActive,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Property from persistence data (no validation).
func Reconstruct(
	id, hostID uuid.UUID,
	details Details,
	status PropertyStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Property {
	return &Property{
		id:        id,
		hostID:    hostID,
		details:   details,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

func (p *Property) ID() uuid.UUID { return p.id }
func (p *Property) HostID() uuid.UUID { return p.hostID }
func (p *Property) Name() string { return p.details.Name }
func (p *Property) Description() string { return p.details.Description }
func (p *Property) Address() Address { return p.details.Address }
func (p *Property) PricePerNight() decimal.Decimal { return p.details.PricePerNight }
func (p *Property) MaxGuests() int { return p.details.MaxGuests }
func (p *Property) NumBedrooms() int { return p.details.NumBedrooms }
func (p *Property) Images() []string { return append([]string(nil), p.details.Images...) }
func (p *Property) Status() PropertyStatus { return p.status }
func (p *Property) Version() int64 { return p.version }
func (p *Property) CreatedAt() time.Time { return p.createdAt }
func (p *Property) UpdatedAt() time.Time { return p.updatedAt }

// --- Behavior ---

// IsHostedBy checks if the listing belongs to the given host.
func (p *Property) IsHostedBy(hostID uuid.UUID) bool {
	return p.hostID == hostID
}

// Update replaces the listing details. The result must satisfy the same rules as a new listing.
func (p *Property) Update(details Details) error {
	if details.Address.Country == "" {
		details.Address.Country = p.details.Address.Country
	}
	if err := details.validate(); err != nil {
		return err
	}
	p.details = details
	p.version++
	p.updatedAt = time.Now().UTC()
	return nil
}

// Deactivate hides the listing from search and stops it accepting new requests.
func (p *Property) Deactivate() {
	p.status = PropertyStatusInactive
	p.version++
	p.updatedAt = time.Now().UTC()
}

// IsActive returns true if the listing is active.
func (p *Property) IsActive() bool {
	return p.status == PropertyStatusActive
}

// CanHost reports whether a party of the given size fits the listing.
func (p *Property) CanHost(guests int) bool {
	return guests >= 1 && guests <= p.details.MaxGuests
}
