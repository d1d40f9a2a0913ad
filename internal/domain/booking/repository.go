package booking

import (
	"context"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindAcceptedByPropertyID returns the property's accepted bookings ordered by check-in.
	FindAcceptedByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*Booking, error)

	// FindByPropertyID returns every booking on the property regardless of status.
	FindByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*Booking, error)

	// FindPendingOverlapping returns pending bookings on the property whose stay overlaps stay.
	FindPendingOverlapping(ctx context.Context, propertyID uuid.UUID, stay DateRange) ([]*Booking, error)

	// FindUnavailablePropertyIDs returns properties holding an accepted booking overlapping stay.
	FindUnavailablePropertyIDs(ctx context.Context, stay DateRange) ([]uuid.UUID, error)

	// FindByGuestID retrieves bookings requested by a guest with pagination, newest first.
	FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByPropertyIDs retrieves bookings on any of the given properties with pagination, newest first.
	FindByPropertyIDs(ctx context.Context, propertyIDs []uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// UpdateStatus persists a status change with optimistic locking.
	UpdateStatus(ctx context.Context, booking *Booking) error

	// WithPropertyLock runs fn while holding an exclusive lock on the property. Reads and
	// writes made through the repository passed to fn are part of the same unit of work.
	WithPropertyLock(ctx context.Context, propertyID uuid.UUID, fn func(ctx context.Context, repo BookingRepository) error) error
}
