package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/novy-stil/service-atelier/pkg/kafka"
)

const source = "service-atelier"

// KafkaPublisher wraps domain payloads in CloudEvents and writes them to Kafka.
// Failures are logged; the request that caused the event has already succeeded.
type KafkaPublisher struct {
	producer *kafka.Producer
	logger   *zap.Logger
}

// NewKafkaPublisher creates a publisher over producer.
func NewKafkaPublisher(producer *kafka.Producer, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, logger: logger}
}

// Publish sends one event.
func (p *KafkaPublisher) Publish(ctx context.Context, topic, key, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(source, eventType, data)
	if err != nil {
		p.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := p.producer.PublishEvent(ctx, topic, key, cloudEvent); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

// NopPublisher drops events; used when Kafka is disabled.
type NopPublisher struct {
	logger *zap.Logger
}

// NewNopPublisher creates a publisher that only logs at debug level.
func NewNopPublisher(logger *zap.Logger) *NopPublisher {
	return &NopPublisher{logger: logger}
}

// Publish logs and discards the event.
func (p *NopPublisher) Publish(_ context.Context, topic, key, eventType string, _ interface{}) {
	p.logger.Debug("event dropped, kafka disabled",
		zap.String("topic", topic),
		zap.String("key", key),
		zap.String("event_type", eventType),
	)
}
