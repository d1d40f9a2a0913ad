package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/staynest/service-booking/pkg/domain"
	"github.com/staynest/service-booking/pkg/events"
	"github.com/staynest/service-booking/pkg/kafka"
)

// ConflictResolver declines the pending requests made obsolete by an accepted booking.
// *application.BookingService satisfies it.
type ConflictResolver interface {
	DeclineConflictingRequests(ctx context.Context, acceptedID uuid.UUID) (int, error)
}

// ConflictSweeper listens to booking events and, whenever a booking is accepted, declines the
// pending requests on the same property that overlap it.
type ConflictSweeper struct {
	consumer *kafka.Consumer
	resolver ConflictResolver
	logger   *zap.Logger
}

// NewConflictSweeper creates a new ConflictSweeper.
func NewConflictSweeper(
	brokers []string,
	groupID string,
	resolver ConflictResolver,
	logger *zap.Logger,
) *ConflictSweeper {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicBookingEvents, logger)
	return &ConflictSweeper{
		consumer: consumer,
		resolver: resolver,
		logger:   logger,
	}
}

// Start begins consuming booking events. This blocks until the context is cancelled.
func (c *ConflictSweeper) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.HandleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *ConflictSweeper) Close() error {
	return c.consumer.Close()
}

// HandleMessage processes one message from the booking topic. Malformed messages are dropped;
// infrastructure failures are returned so the message is retried.
func (c *ConflictSweeper) HandleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from booking topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.BookingAccepted:
		return c.handleAccepted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring booking event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *ConflictSweeper) handleAccepted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.BookingEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse booking accepted data", zap.Error(err))
		return nil // Don't retry malformed data
	}
	bookingID, err := uuid.Parse(evt.BookingID)
	if err != nil {
		c.logger.Error("booking accepted event carries an invalid booking id",
			zap.String("booking_id", evt.BookingID),
		)
		return nil
	}

	declined, err := c.resolver.DeclineConflictingRequests(ctx, bookingID)
	if err != nil {
		// Business-rule failures will not improve on retry.
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			c.logger.Warn("conflict sweep rejected",
				zap.String("booking_id", evt.BookingID),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("conflict sweep failed",
			zap.String("booking_id", evt.BookingID),
			zap.Error(err),
		)
		return err
	}

	if declined > 0 {
		c.logger.Info("declined overlapping requests",
			zap.String("booking_id", evt.BookingID),
			zap.String("property_id", evt.PropertyID),
			zap.Int("declined", declined),
		)
	}
	return nil
}
