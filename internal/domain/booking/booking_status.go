package booking

import (
	"fmt"

	"github.com/staynest/service-booking/pkg/domain"
)

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending  BookingStatus = "pending"
	StatusAccepted BookingStatus = "accepted"
	StatusDeclined BookingStatus = "declined"
	StatusCanceled BookingStatus = "canceled"
)

// validTransitions defines the state machine for booking status transitions.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:  {StatusAccepted, StatusDeclined, StatusCanceled},
	StatusAccepted: {StatusCanceled},
	StatusDeclined: {},
	StatusCanceled: {},
}

// AllStatuses lists every status in lifecycle order.
func AllStatuses() []BookingStatus {
	return []BookingStatus{StatusPending, StatusAccepted, StatusDeclined, StatusCanceled}
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// BlocksCalendar reports whether a booking in this status makes its nights unavailable.
func (s BookingStatus) BlocksCalendar() bool {
	return s == StatusAccepted
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid booking status: %s", s))
	}
	return status, nil
}
