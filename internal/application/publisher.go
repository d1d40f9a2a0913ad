package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	"github.com/staynest/service-booking/pkg/events"
	"github.com/staynest/service-booking/pkg/kafka"
)

const eventSource = "service-booking"

// EventPublisher delivers CloudEvents to a topic. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// publishBookingEvent announces the booking's current status. Failures are logged, never
// returned: the state change is already committed.
func publishBookingEvent(
	ctx context.Context,
	publisher EventPublisher,
	logger *zap.Logger,
	bk *bookingDomain.Booking,
	hostID, actorID uuid.UUID,
) {
	if publisher == nil {
		return
	}
	eventType, ok := events.TypeForStatus(string(bk.Status()))
	if !ok {
		return
	}

	evt := events.BookingEvent{
		BookingID:    bk.ID().String(),
		PropertyID:   bk.PropertyID().String(),
		GuestID:      bk.GuestID().String(),
		HostID:       hostID.String(),
		ActorID:      actorID.String(),
		Status:       string(bk.Status()),
		CheckInDate:  bk.Stay().CheckIn.String(),
		CheckOutDate: bk.Stay().CheckOut.String(),
		TotalPrice:   bk.TotalPrice().StringFixed(2),
		OccurredAt:   time.Now().UTC(),
	}

	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, evt)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = bk.PropertyID().String()

	if err := publisher.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.String("booking_id", evt.BookingID),
			zap.Error(err),
		)
	}
}
