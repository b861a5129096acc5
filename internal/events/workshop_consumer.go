package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/novy-stil/service-atelier/internal/application"
	orderDomain "github.com/novy-stil/service-atelier/internal/domain/order"
	"github.com/novy-stil/service-atelier/pkg/domain"
	"github.com/novy-stil/service-atelier/pkg/events"
	"github.com/novy-stil/service-atelier/pkg/kafka"
)

// OrderAdvancer moves orders through their lifecycle.
type OrderAdvancer interface {
	AdvanceOrderStatus(ctx context.Context, orderID int64, status orderDomain.Status) (*application.OrderDTO, error)
}

// WorkshopEventConsumer listens to workshop events and advances order statuses.
type WorkshopEventConsumer struct {
	consumer *kafka.Consumer
	service  OrderAdvancer
	logger   *zap.Logger
}

// NewWorkshopEventConsumer creates a new WorkshopEventConsumer.
func NewWorkshopEventConsumer(
	brokers []string,
	groupID string,
	service OrderAdvancer,
	logger *zap.Logger,
) *WorkshopEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicWorkshopEvents, logger)
	return &WorkshopEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming workshop events. This blocks until the context is cancelled.
func (c *WorkshopEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *WorkshopEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *WorkshopEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from workshop topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.WorkshopOrderStarted:
		return c.advance(ctx, cloudEvent, orderDomain.StatusInProgress)
	case events.WorkshopOrderFinished:
		return c.advance(ctx, cloudEvent, orderDomain.StatusCompleted)
	default:
		c.logger.Debug("ignoring unhandled workshop event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *WorkshopEventConsumer) advance(ctx context.Context, cloudEvent kafka.CloudEvent, status orderDomain.Status) error {
	var evt events.WorkshopOrderEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.OrderID < 1 {
		c.logger.Error("failed to parse WorkshopOrderEvent data",
			zap.String("type", cloudEvent.Type),
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	_, err := c.service.AdvanceOrderStatus(ctx, evt.OrderID, status)
	if err != nil {
		if _, ok := domain.CodeOf(err); ok {
			// Unknown order or a step backwards; retrying cannot fix it.
			c.logger.Warn("workshop event rejected",
				zap.Int64("order_id", evt.OrderID),
				zap.String("status", status.String()),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to advance order from workshop event",
			zap.Int64("order_id", evt.OrderID),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("order advanced by workshop",
		zap.Int64("order_id", evt.OrderID),
		zap.String("status", status.String()),
		zap.String("master", evt.Master),
	)
	return nil
}
