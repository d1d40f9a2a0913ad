package application

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/staynest/service-booking/internal/cache"
	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
)

// AvailabilityService answers calendar questions from a property's accepted bookings.
type AvailabilityService struct {
	repo   bookingDomain.BookingRepository
	cache  cache.BlockedDatesCache
	logger *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService. A nil cache disables caching.
func NewAvailabilityService(
	repo bookingDomain.BookingRepository,
	blockedCache cache.BlockedDatesCache,
	logger *zap.Logger,
) *AvailabilityService {
	if blockedCache == nil {
		blockedCache = cache.NopBlockedDatesCache{}
	}
	return &AvailabilityService{
		repo:   repo,
		cache:  blockedCache,
		logger: logger,
	}
}

// IsAvailable reports whether [checkIn, checkOut) overlaps no accepted booking on the property.
// Pending, declined and canceled bookings never block. Malformed ranges are rejected.
func (s *AvailabilityService) IsAvailable(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut civil.Date) (bool, error) {
	stay, err := bookingDomain.NewDateRange(checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return isAvailable(ctx, s.repo, propertyID, stay, uuid.Nil)
}

// BlockedDates lists every night covered by an accepted booking on the property, ascending.
func (s *AvailabilityService) BlockedDates(ctx context.Context, propertyID uuid.UUID) ([]civil.Date, error) {
	if dates, ok, err := s.cache.Get(ctx, propertyID); err != nil {
		s.logger.Warn("blocked-dates cache read failed",
			zap.String("property_id", propertyID.String()),
			zap.Error(err),
		)
	} else if ok {
		return dates, nil
	}

	// Read before loading: an invalidation that lands while we load makes the write a no-op.
	generation, genErr := s.cache.Generation(ctx, propertyID)
	if genErr != nil {
		s.logger.Warn("blocked-dates generation read failed",
			zap.String("property_id", propertyID.String()),
			zap.Error(genErr),
		)
	}

	accepted, err := s.repo.FindAcceptedByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accepted bookings: %w", err)
	}
	dates := bookingDomain.BlockedDates(accepted)

	if genErr != nil {
		return dates, nil
	}
	if err := s.cache.Set(ctx, propertyID, generation, dates); err != nil {
		s.logger.Warn("blocked-dates cache write failed",
			zap.String("property_id", propertyID.String()),
			zap.Error(err),
		)
	}
	return dates, nil
}

// Invalidate drops the cached calendar of a property after its accepted set changed.
func (s *AvailabilityService) Invalidate(ctx context.Context, propertyID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, propertyID); err != nil {
		s.logger.Error("blocked-dates cache invalidation failed",
			zap.String("property_id", propertyID.String()),
			zap.Error(err),
		)
	}
}

// isAvailable checks stay against the accepted bookings visible through repo, ignoring exclude.
func isAvailable(
	ctx context.Context,
	repo bookingDomain.BookingRepository,
	propertyID uuid.UUID,
	stay bookingDomain.DateRange,
	exclude uuid.UUID,
) (bool, error) {
	accepted, err := repo.FindAcceptedByPropertyID(ctx, propertyID)
	if err != nil {
		return false, fmt.Errorf("failed to load accepted bookings: %w", err)
	}
	for _, bk := range accepted {
		if bk.ID() == exclude {
			continue
		}
		if stay.Overlaps(bk.Stay()) {
			return false, nil
		}
	}
	return true, nil
}
