package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	propertyDomain "github.com/staynest/service-booking/internal/domain/property"
	"github.com/staynest/service-booking/pkg/domain"
)

// CreateBookingRequest holds the data needed to request a stay.
type CreateBookingRequest struct {
	PropertyID   uuid.UUID        `json:"property_id" binding:"required"`
	GuestID      uuid.UUID        `json:"guest_id"`
	CheckInDate  civil.Date       `json:"check_in_date"`
	CheckOutDate civil.Date       `json:"check_out_date"`
	Guests       int              `json:"guests" validate:"omitempty,min=1"`
	TotalPrice   *decimal.Decimal `json:"total_price,omitempty" validate:"omitempty,nonneg_money"`
}

// UpdateBookingStatusRequest carries a target status for PATCH /bookings/:id/status.
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID           uuid.UUID       `json:"id"`
	PropertyID   uuid.UUID       `json:"property_id"`
	GuestID      uuid.UUID       `json:"guest_id"`
	CheckInDate  civil.Date      `json:"check_in_date"`
	CheckOutDate civil.Date      `json:"check_out_date"`
	Nights       int             `json:"nights"`
	Guests       int             `json:"guests"`
	Status       string          `json:"status"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	DecidedAt    *time.Time      `json:"decided_at,omitempty"`
	CanceledAt   *time.Time      `json:"canceled_at,omitempty"`
	CanceledBy   *uuid.UUID      `json:"canceled_by,omitempty"`
	Version      int64           `json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// BookingBoardDTO is a host's view of one property's bookings.
type BookingBoardDTO struct {
	PropertyID uuid.UUID    `json:"property_id"`
	Pending    []BookingDTO `json:"pending"`
	Accepted   []BookingDTO `json:"accepted"`
	Past       []BookingDTO `json:"past"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo         bookingDomain.BookingRepository
	properties   propertyDomain.PropertyRepository
	availability *AvailabilityService
	pricing      bookingDomain.PricingStrategy
	validator    *RequestValidator
	publisher    EventPublisher
	logger       *zap.Logger
}

// NewBookingService creates a new BookingService. publisher may be nil.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	properties propertyDomain.PropertyRepository,
	availability *AvailabilityService,
	pricing bookingDomain.PricingStrategy,
	validator *RequestValidator,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:         repo,
		properties:   properties,
		availability: availability,
		pricing:      pricing,
		validator:    validator,
		publisher:    publisher,
		logger:       logger,
	}
}

// CreateBooking requests a stay on behalf of actorID, who must be the guest.
func (s *BookingService) CreateBooking(ctx context.Context, actorID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	if actorID != req.GuestID {
		return nil, domain.NewForbiddenError("you can only request bookings for yourself")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	stay, err := bookingDomain.NewDateRange(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, err
	}

	prop, err := s.properties.FindByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if !prop.IsActive() {
		return nil, domain.NewConflictError("this property is not accepting bookings")
	}

	guests := req.Guests
	if guests == 0 {
		guests = 1
	}
	if !prop.CanHost(guests) {
		return nil, domain.NewValidationError(fmt.Sprintf("this property allows at most %d guests", prop.MaxGuests()))
	}

	var total decimal.Decimal
	if req.TotalPrice != nil {
		total = *req.TotalPrice
	} else {
		total, err = s.pricing.Calculate(bookingDomain.PricingParams{
			Stay:          stay,
			PricePerNight: prop.PricePerNight(),
			Guests:        guests,
		})
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
		}
	}

	bk, err := bookingDomain.NewBooking(prop.ID(), req.GuestID, stay, guests, total)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithPropertyLock(ctx, prop.ID(), func(ctx context.Context, repo bookingDomain.BookingRepository) error {
		ok, err := isAvailable(ctx, repo, prop.ID(), stay, uuid.Nil)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewUnavailableError("the selected dates are no longer available")
		}
		if err := repo.Save(ctx, bk); err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking requested",
		zap.String("booking_id", bk.ID().String()),
		zap.String("property_id", prop.ID().String()),
		zap.String("stay", stay.String()),
	)
	publishBookingEvent(ctx, s.publisher, s.logger, bk, prop.HostID(), actorID)

	result := toBookingDTO(bk)
	return &result, nil
}

// SetBookingStatus moves a booking to target on behalf of actorID.
func (s *BookingService) SetBookingStatus(ctx context.Context, actorID, bookingID uuid.UUID, target bookingDomain.BookingStatus) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	prop, err := s.properties.FindByID(ctx, bk.PropertyID())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("booking references a missing property",
				zap.String("booking_id", bk.ID().String()),
				zap.String("property_id", bk.PropertyID().String()),
			)
		}
		return nil, err
	}

	if err := bk.TransitionTo(target, actorID, prop.HostID()); err != nil {
		return nil, err
	}

	err = s.repo.WithPropertyLock(ctx, prop.ID(), func(ctx context.Context, repo bookingDomain.BookingRepository) error {
		if target == bookingDomain.StatusAccepted {
			ok, err := isAvailable(ctx, repo, prop.ID(), bk.Stay(), bk.ID())
			if err != nil {
				return err
			}
			if !ok {
				return domain.NewUnavailableError("another stay was already accepted for these dates")
			}
		}
		bk.IncrementVersion()
		return repo.UpdateStatus(ctx, bk)
	})
	if err != nil {
		return nil, err
	}

	s.availability.Invalidate(ctx, prop.ID())
	s.logger.Info("booking status changed",
		zap.String("booking_id", bk.ID().String()),
		zap.String("status", string(bk.Status())),
		zap.String("actor_id", actorID.String()),
	)
	publishBookingEvent(ctx, s.publisher, s.logger, bk, prop.HostID(), actorID)

	result := toBookingDTO(bk)
	return &result, nil
}

// AcceptBooking accepts a pending booking as the property host.
func (s *BookingService) AcceptBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.SetBookingStatus(ctx, actorID, bookingID, bookingDomain.StatusAccepted)
}

// DeclineBooking declines a pending booking as the property host.
func (s *BookingService) DeclineBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.SetBookingStatus(ctx, actorID, bookingID, bookingDomain.StatusDeclined)
}

// CancelBooking cancels a booking as its guest, or as the host once accepted.
func (s *BookingService) CancelBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*BookingDTO, error) {
	return s.SetBookingStatus(ctx, actorID, bookingID, bookingDomain.StatusCanceled)
}

// DeclineConflictingRequests declines, as the host, every pending request that overlaps an
// accepted booking. It returns how many were declined. Requests that changed state in the
// meantime are skipped.
func (s *BookingService) DeclineConflictingRequests(ctx context.Context, acceptedID uuid.UUID) (int, error) {
	accepted, err := s.repo.FindByID(ctx, acceptedID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if accepted.Status() != bookingDomain.StatusAccepted {
		return 0, nil
	}

	prop, err := s.properties.FindByID(ctx, accepted.PropertyID())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	pending, err := s.repo.FindPendingOverlapping(ctx, prop.ID(), accepted.Stay())
	if err != nil {
		return 0, fmt.Errorf("failed to load overlapping requests: %w", err)
	}

	declined := 0
	for _, bk := range pending {
		if bk.ID() == accepted.ID() {
			continue
		}
		_, err := s.SetBookingStatus(ctx, prop.HostID(), bk.ID(), bookingDomain.StatusDeclined)
		switch {
		case err == nil:
			declined++
		case errors.Is(err, domain.ErrConflict):
			s.logger.Debug("skipping request that already changed state",
				zap.String("booking_id", bk.ID().String()),
			)
		default:
			return declined, err
		}
	}
	return declined, nil
}

// GetBooking retrieves a booking visible to actorID.
func (s *BookingService) GetBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	prop, err := s.properties.FindByID(ctx, bk.PropertyID())
	if err != nil {
		return nil, err
	}
	if !bk.IsVisibleTo(actorID, prop.HostID()) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetGuestBookings retrieves paginated bookings requested by a guest.
func (s *BookingService) GetGuestBookings(ctx context.Context, guestID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByGuestID(ctx, guestID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetHostBookings retrieves paginated bookings across every property of a host.
func (s *BookingService) GetHostBookings(ctx context.Context, hostID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	props, err := s.properties.FindByHostID(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if len(props) == 0 {
		result := domain.NewPaginatedResult([]BookingDTO{}, 0, page, limit)
		return &result, nil
	}

	ids := make([]uuid.UUID, len(props))
	for i, p := range props {
		ids[i] = p.ID()
	}
	bookings, total, err := s.repo.FindByPropertyIDs(ctx, ids, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetPropertyBookingBoard groups a property's bookings for its host relative to today.
func (s *BookingService) GetPropertyBookingBoard(ctx context.Context, actorID, propertyID uuid.UUID, today civil.Date) (*BookingBoardDTO, error) {
	prop, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !prop.IsHostedBy(actorID) {
		return nil, domain.NewForbiddenError("only the property host can view its bookings")
	}

	bookings, err := s.repo.FindByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	var pending, accepted, past []*bookingDomain.Booking
	for _, bk := range bookings {
		switch {
		case bk.Status() == bookingDomain.StatusDeclined,
			bk.Status() == bookingDomain.StatusCanceled,
			bk.Stay().CheckOut.Before(today):
			past = append(past, bk)
		case bk.Status() == bookingDomain.StatusPending:
			pending = append(pending, bk)
		default:
			accepted = append(accepted, bk)
		}
	}

	byCheckIn := func(list []*bookingDomain.Booking, desc bool) {
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i].Stay().CheckIn, list[j].Stay().CheckIn
			if desc {
				return a.After(b)
			}
			return a.Before(b)
		})
	}
	byCheckIn(pending, false)
	byCheckIn(accepted, false)
	byCheckIn(past, true)

	return &BookingBoardDTO{
		PropertyID: propertyID,
		Pending:    toBookingDTOs(pending),
		Accepted:   toBookingDTOs(accepted),
		Past:       toBookingDTOs(past),
	}, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	byStatus := make(map[string]int64, len(counts))
	for _, st := range bookingDomain.AllStatuses() {
		byStatus[string(st)] = 0
	}
	var total int64
	for st, c := range counts {
		byStatus[st] = c
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      byStatus,
	}, nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:           bk.ID(),
		PropertyID:   bk.PropertyID(),
		GuestID:      bk.GuestID(),
		CheckInDate:  bk.Stay().CheckIn,
		CheckOutDate: bk.Stay().CheckOut,
		Nights:       bk.Stay().Nights(),
		Guests:       bk.GuestCount(),
		Status:       string(bk.Status()),
		TotalPrice:   bk.TotalPrice(),
		DecidedAt:    bk.DecidedAt(),
		CanceledAt:   bk.CanceledAt(),
		CanceledBy:   bk.CanceledBy(),
		Version:      bk.Version(),
		CreatedAt:    bk.CreatedAt(),
		UpdatedAt:    bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}
