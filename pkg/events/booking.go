// Package events holds the Kafka contract shared by publishers and consumers of booking events.
package events

import "time"

// TopicBookingEvents carries every booking lifecycle event.
const TopicBookingEvents = "booking.events"

// Booking event types.
const (
	BookingRequested = "booking.requested"
	BookingAccepted  = "booking.accepted"
	BookingDeclined  = "booking.declined"
	BookingCanceled  = "booking.canceled"
)

// BookingEvent is the payload of every booking lifecycle event.
type BookingEvent struct {
	BookingID    string    `json:"booking_id"`
	PropertyID   string    `json:"property_id"`
	GuestID      string    `json:"guest_id"`
	HostID       string    `json:"host_id"`
	ActorID      string    `json:"actor_id"`
	Status       string    `json:"status"`
	CheckInDate  string    `json:"check_in_date"`
	CheckOutDate string    `json:"check_out_date"`
	TotalPrice   string    `json:"total_price"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// TypeForStatus maps a booking status to the event announcing it.
func TypeForStatus(status string) (string, bool) {
	switch status {
	case "pending":
		return BookingRequested, true
	case "accepted":
		return BookingAccepted, true
	case "declined":
		return BookingDeclined, true
	case "canceled":
		return BookingCanceled, true
	}
	return "", false
}
