package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes one message. A returned error makes the consumer
// retry the same message with backoff. After the last attempt the message is
// logged as dropped and its offset committed.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

// fetcher is the part of *kafkago.Reader the consumer relies on.
type fetcher interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

const (
	defaultMaxAttempts = 5
	defaultBackoff     = 500 * time.Millisecond
	maxBackoff         = 10 * time.Second
)

// Consumer reads a single topic as part of a consumer group.
type Consumer struct {
	reader      fetcher
	logger      *zap.Logger
	maxAttempts int
	backoff     time.Duration
}

// NewConsumer creates a group consumer for topic.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:        brokers,
			GroupID:        groupID,
			Topic:          topic,
			MinBytes:       1,
			MaxBytes:       10e6,
			MaxWait:        time.Second,
			CommitInterval: 0,
		}),
		logger:      logger.With(zap.String("topic", topic), zap.String("group", groupID)),
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
}

// Consume blocks until ctx is cancelled. Messages are handled in offset order;
// a failing message is retried before the consumer moves past it.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				c.logger.Info("consumer stopped")
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		if !c.handle(ctx, handler, msg) {
			// Cancelled mid-retry: leave the offset uncommitted for the next run.
			c.logger.Info("consumer stopped", zap.Int64("pending_offset", msg.Offset))
			return nil
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit offset", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

// handle runs handler until it succeeds or attempts run out. It returns false
// only when ctx was cancelled before the message was settled.
func (c *Consumer) handle(ctx context.Context, handler MessageHandler, msg kafkago.Message) bool {
	backoff := c.backoff
	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg)
		if err == nil {
			return true
		}
		if attempt >= c.maxAttempts {
			c.logger.Error("handler failed, dropping message",
				zap.Int64("offset", msg.Offset),
				zap.Int("partition", msg.Partition),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return true
		}
		c.logger.Warn("handler failed, retrying",
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// Close stops the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
