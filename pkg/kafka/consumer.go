package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler processes one message. Returning an error leaves the offset uncommitted.
type Handler func(ctx context.Context, msg kafkago.Message) error

// messageReader is the part of *kafkago.Reader the consumer drives.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer reads a single topic as part of a consumer group.
type Consumer struct {
	reader     messageReader
	logger     *zap.Logger
	retryDelay time.Duration
}

// NewConsumer creates a new Consumer.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		CommitInterval: 0,
	})
	return newConsumer(reader, logger.With(zap.String("topic", topic), zap.String("group_id", groupID)))
}

func newConsumer(reader messageReader, logger *zap.Logger) *Consumer {
	return &Consumer{reader: reader, logger: logger, retryDelay: time.Second}
}

// pause waits out the retry delay. It reports false when ctx ended first.
func (c *Consumer) pause(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.retryDelay):
		return true
	}
}

// Consume fetches messages until ctx is cancelled or the reader is closed, committing each one
// the handler accepts. Fetch errors and failing handlers are retried after a short pause.
func (c *Consumer) Consume(ctx context.Context, handle Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return context.Canceled
			}
			if errors.Is(err, io.EOF) {
				return err
			}
			c.logger.Error("failed to fetch message", zap.Error(err))
			if !c.pause(ctx) {
				return context.Canceled
			}
			continue
		}

		for {
			err := handle(ctx, msg)
			if err == nil {
				break
			}
			c.logger.Warn("handler failed, retrying",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			if !c.pause(ctx) {
				return context.Canceled
			}
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("failed to commit message",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// Close closes the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
