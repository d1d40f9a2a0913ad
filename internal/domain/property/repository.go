package property

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SearchCriteria filters active listings. Zero-valued fields do not filter.
type SearchCriteria struct {
	// Location matches city or state, case-insensitively, as a substring.
	Location  string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	MinGuests int
	// ExcludeIDs removes listings already booked for the requested dates.
	ExcludeIDs []uuid.UUID
}

// PropertyRepository defines persistence operations for listings.
type PropertyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	FindByHostID(ctx context.Context, hostID uuid.UUID) ([]*Property, error)
	// Search returns active listings matching criteria, newest first.
	Search(ctx context.Context, criteria SearchCriteria, page, limit int) ([]*Property, int64, error)
	Save(ctx context.Context, property *Property) error
	Update(ctx context.Context, property *Property) error
}
