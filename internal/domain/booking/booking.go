package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staynest/service-booking/pkg/domain"
)

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id         uuid.UUID
	propertyID uuid.UUID
	guestID    uuid.UUID
	stay       DateRange
	guestCount int
	status     BookingStatus
	totalPrice decimal.Decimal

	decidedAt  *time.Time
	canceledAt *time.Time
	canceledBy *uuid.UUID

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate with status=pending.
func NewBooking(
	propertyID uuid.UUID,
	guestID uuid.UUID,
	stay DateRange,
	guestCount int,
	totalPrice decimal.Decimal,
) (*Booking, error) {
	if propertyID == uuid.Nil {
		return nil, domain.NewValidationError("property ID is required")
	}
	if guestID == uuid.Nil {
		return nil, domain.NewValidationError("guest ID is required")
	}
	if _, err := NewDateRange(stay.CheckIn, stay.CheckOut); err != nil {
		return nil, err
	}
	if guestCount < 1 {
		return nil, domain.NewValidationError("at least one guest is required")
	}
	if totalPrice.IsNegative() {
		return nil, domain.NewValidationError("total price cannot be negative")
	}

	now := time.Now().UTC()
	return &Booking{
		id:         uuid.New(),
		propertyID: propertyID,
		guestID:    guestID,
		stay:       stay,
		guestCount: guestCount,
		status:     StatusPending,
		totalPrice: totalPrice.Round(2),
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	propertyID uuid.UUID,
	guestID uuid.UUID,
	stay DateRange,
	guestCount int,
	status BookingStatus,
	totalPrice decimal.Decimal,
	decidedAt *time.Time,
	canceledAt *time.Time,
	canceledBy *uuid.UUID,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:         id,
		propertyID: propertyID,
		guestID:    guestID,
		stay:       stay,
		guestCount: guestCount,
		status:     status,
		totalPrice: totalPrice,
		decidedAt:  decidedAt,
		canceledAt: canceledAt,
		canceledBy: canceledBy,
		version:    version,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// PropertyID returns the booked property's identifier.
func (b *Booking) PropertyID() uuid.UUID { return b.propertyID }

// GuestID returns the requesting guest's user ID.
func (b *Booking) GuestID() uuid.UUID { return b.guestID }

// Stay returns the booked date range.
func (b *Booking) Stay() DateRange { return b.stay }

// GuestCount returns the number of guests on the booking.
func (b *Booking) GuestCount() int { return b.guestCount }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// TotalPrice returns the price agreed at request time.
func (b *Booking) TotalPrice() decimal.Decimal { return b.totalPrice }

// DecidedAt returns when the host accepted or declined, or nil.
func (b *Booking) DecidedAt() *time.Time { return b.decidedAt }

// CanceledAt returns when the booking was canceled, or nil.
func (b *Booking) CanceledAt() *time.Time { return b.canceledAt }

// CanceledBy returns who canceled the booking, or nil.
func (b *Booking) CanceledBy() *uuid.UUID { return b.canceledBy }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsVisibleTo reports whether actor is the booking's guest or the property's host.
func (b *Booking) IsVisibleTo(actorID, hostID uuid.UUID) bool {
	return actorID == b.guestID || actorID == hostID
}

// Accept transitions the booking from pending to accepted. Only the host may accept.
func (b *Booking) Accept(actorID, hostID uuid.UUID) error {
	if actorID != hostID {
		return domain.NewForbiddenError("only the property host can accept a booking")
	}
	if !b.status.CanTransitionTo(StatusAccepted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusAccepted))
	}
	now := time.Now().UTC()
	b.status = StatusAccepted
	b.decidedAt = &now
	b.updatedAt = now
	return nil
}

// Decline transitions the booking from pending to declined. Only the host may decline.
func (b *Booking) Decline(actorID, hostID uuid.UUID) error {
	if actorID != hostID {
		return domain.NewForbiddenError("only the property host can decline a booking")
	}
	if !b.status.CanTransitionTo(StatusDeclined) {
		return domain.NewInvalidStateError(string(b.status), string(StatusDeclined))
	}
	now := time.Now().UTC()
	b.status = StatusDeclined
	b.decidedAt = &now
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to canceled. The guest may cancel a pending or accepted
// booking; the host may cancel only one it has already accepted.
func (b *Booking) Cancel(actorID, hostID uuid.UUID) error {
	isGuest := actorID == b.guestID
	if !isGuest && actorID != hostID {
		return domain.NewForbiddenError("only the guest or the property host can cancel a booking")
	}
	if !b.status.CanTransitionTo(StatusCanceled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCanceled))
	}
	if !isGuest && b.status != StatusAccepted {
		return domain.NewForbiddenError("the host can only cancel an accepted booking")
	}
	now := time.Now().UTC()
	b.status = StatusCanceled
	b.canceledAt = &now
	b.canceledBy = &actorID
	b.updatedAt = now
	return nil
}

// TransitionTo applies the host or guest action that leads to target.
func (b *Booking) TransitionTo(target BookingStatus, actorID, hostID uuid.UUID) error {
	switch target {
	case StatusAccepted:
		return b.Accept(actorID, hostID)
	case StatusDeclined:
		return b.Decline(actorID, hostID)
	case StatusCanceled:
		return b.Cancel(actorID, hostID)
	case StatusPending:
		return domain.NewInvalidStateError(string(b.status), string(StatusPending))
	default:
		return domain.NewValidationError("invalid booking status: " + string(target))
	}
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
