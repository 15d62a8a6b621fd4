package tradepublisher

import (
	"context"

	"github.com/openclob/matching-engine/pkg/config"
	"github.com/openclob/matching-engine/pkg/errors"
	"github.com/openclob/matching-engine/pkg/logger"
	"github.com/segmentio/kafka-go"

	tradepublisherv1 "github.com/openclob/matching-engine/internal/domain/trade-publisher/v1"
)

// Publisher writes trade and cancellation events to the trade topic.
type Publisher struct {
	kafkaWriter *kafka.Writer
	logger      logger.Interface
}

// NewPublisher creates a Kafka publisher for trade events.
func NewPublisher(cfg config.TradePublisherConfig, log logger.Interface) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
	})

	return &Publisher{
		kafkaWriter: kafkaWriter,
		logger:      log,
	}
}

// PublishTrade publishes a trade event to the trade topic.
func (p *Publisher) PublishTrade(ctx context.Context, event *tradepublisherv1.TradeEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.EventID),
		Value: tradepublisherv1.ToBytes(event),
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "eventID", Value: event.EventID},
			logger.Field{Key: "makerOrderID", Value: event.MakerOrderID},
			logger.Field{Key: "takerOrderID", Value: event.TakerOrderID},
		)
		return errors.NewTracer("failed to publish trade event").Wrap(err)
	}
	return nil
}

// PublishOrderDone publishes a cancellation event to the trade topic.
func (p *Publisher) PublishOrderDone(ctx context.Context, event *tradepublisherv1.OrderDoneEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.EventID),
		Value: tradepublisherv1.ToBytes(event),
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "eventID", Value: event.EventID},
			logger.Field{Key: "orderID", Value: event.OrderID},
			logger.Field{Key: "reason", Value: string(event.Reason)},
		)
		return errors.NewTracer("failed to publish order done event").Wrap(err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
