package booking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staynest/service-booking/pkg/domain"
)

func pendingBooking(t *testing.T, guestID uuid.UUID) *Booking {
	t.Helper()
	b, err := NewBooking(uuid.New(), guestID, stay(t, "2025-12-10", "2025-12-15"), 2, decimal.RequireFromString("500.00"))
	require.NoError(t, err)
	return b
}

func TestNewBooking(t *testing.T) {
	guest := uuid.New()
	b := pendingBooking(t, guest)

	assert.Equal(t, StatusPending, b.Status())
	assert.Equal(t, guest, b.GuestID())
	assert.Equal(t, int64(1), b.Version())
	assert.Equal(t, 5, b.Stay().Nights())

	_, err := NewBooking(uuid.Nil, guest, b.Stay(), 1, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewBooking(uuid.New(), guest, DateRange{CheckIn: b.Stay().CheckOut, CheckOut: b.Stay().CheckIn}, 1, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewBooking(uuid.New(), guest, b.Stay(), 1, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewBooking(uuid.New(), guest, b.Stay(), 0, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBookingStatus_StateMachine(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusAccepted))
	assert.True(t, StatusPending.CanTransitionTo(StatusDeclined))
	assert.True(t, StatusPending.CanTransitionTo(StatusCanceled))
	assert.True(t, StatusAccepted.CanTransitionTo(StatusCanceled))
	assert.False(t, StatusAccepted.CanTransitionTo(StatusDeclined))
	assert.False(t, StatusAccepted.CanTransitionTo(StatusPending))
	assert.True(t, StatusDeclined.IsTerminal())
	assert.True(t, StatusCanceled.IsTerminal())
	assert.True(t, StatusAccepted.BlocksCalendar())
	assert.False(t, StatusPending.BlocksCalendar())

	_, err := ParseBookingStatus("confirmed")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBooking_Transitions(t *testing.T) {
	guest, host, stranger := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name    string
		setup   []BookingStatus
		target  BookingStatus
		actor   uuid.UUID
		wantErr error
	}{
		{"host accepts pending", nil, StatusAccepted, host, nil},
		{"host declines pending", nil, StatusDeclined, host, nil},
		{"guest cancels pending", nil, StatusCanceled, guest, nil},
		{"guest cancels accepted", []BookingStatus{StatusAccepted}, StatusCanceled, guest, nil},
		{"host cancels accepted", []BookingStatus{StatusAccepted}, StatusCanceled, host, nil},
		{"guest cannot accept", nil, StatusAccepted, guest, domain.ErrForbidden},
		{"stranger cannot decline", nil, StatusDeclined, stranger, domain.ErrForbidden},
		{"stranger cannot cancel", nil, StatusCanceled, stranger, domain.ErrForbidden},
		{"host cannot cancel pending", nil, StatusCanceled, host, domain.ErrForbidden},
		{"host cannot decline declined", []BookingStatus{StatusDeclined}, StatusDeclined, host, domain.ErrConflict},
		{"host cannot accept accepted", []BookingStatus{StatusAccepted}, StatusAccepted, host, domain.ErrConflict},
		{"host cannot decline accepted", []BookingStatus{StatusAccepted}, StatusDeclined, host, domain.ErrConflict},
		{"guest cannot cancel canceled", []BookingStatus{StatusCanceled}, StatusCanceled, guest, domain.ErrConflict},
		{"nobody reverts to pending", nil, StatusPending, host, domain.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pendingBooking(t, guest)
			for _, s := range tt.setup {
				actor := host
				if s == StatusCanceled {
					actor = guest
				}
				require.NoError(t, b.TransitionTo(s, actor, host))
			}
			before := b.Status()

			err := b.TransitionTo(tt.target, tt.actor, host)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, b.Status())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.target, b.Status())
		})
	}
}

func TestBooking_InvalidTransitionCode(t *testing.T) {
	host := uuid.New()
	b := pendingBooking(t, uuid.New())
	require.NoError(t, b.Decline(host, host))

	code, ok := domain.CodeOf(b.Decline(host, host))
	require.True(t, ok)
	assert.Equal(t, domain.CodeInvalidTransition, code)
}

func TestBooking_CancelRecordsActor(t *testing.T) {
	guest := uuid.New()
	b := pendingBooking(t, guest)

	require.NoError(t, b.Cancel(guest, uuid.New()))
	require.NotNil(t, b.CanceledBy())
	assert.Equal(t, guest, *b.CanceledBy())
	assert.NotNil(t, b.CanceledAt())
}

func TestBooking_IsVisibleTo(t *testing.T) {
	guest, host := uuid.New(), uuid.New()
	b := pendingBooking(t, guest)

	assert.True(t, b.IsVisibleTo(guest, host))
	assert.True(t, b.IsVisibleTo(host, host))
	assert.False(t, b.IsVisibleTo(uuid.New(), host))
}

func TestNightlyPricingStrategy(t *testing.T) {
	s := NewNightlyPricingStrategy()

	total, err := s.Calculate(PricingParams{
		Stay:          stay(t, "2025-12-10", "2025-12-13"),
		PricePerNight: decimal.RequireFromString("129.99"),
	})
	require.NoError(t, err)
	assert.Equal(t, "389.97", total.StringFixed(2))

	_, err = s.Calculate(PricingParams{
		Stay:          stay(t, "2025-12-10", "2025-12-13"),
		PricePerNight: decimal.NewFromInt(-5),
	})
	assert.Error(t, err)
}
