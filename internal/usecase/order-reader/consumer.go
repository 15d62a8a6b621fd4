package orderreader

import (
	"context"
	"encoding/json"

	"github.com/openclob/matching-engine/pkg/config"
	"github.com/openclob/matching-engine/pkg/logger"
	"github.com/segmentio/kafka-go"

	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
)

// Reader consumes order requests from the intake topic. It returns an
// implementation of the OrderReader interface.
type Reader struct {
	kafkaReader *kafka.Reader
	logger      logger.Interface
}

// NewReader creates a Kafka reader for the order intake topic.
func NewReader(cfg config.KafkaConfig, log logger.Interface) *Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		Partition:   0,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})

	return &Reader{
		kafkaReader: kafkaReader,
		logger:      log,
	}
}

func (r *Reader) logError(err error, operation string) {
	r.logger.Error(err,
		logger.Field{Key: "error", Value: err.Error()},
		logger.Field{Key: "operation", Value: operation},
	)
}

// SetOffset positions the reader in the intake stream.
func (r *Reader) SetOffset(offset int64) error {
	if err := r.kafkaReader.SetOffset(offset); err != nil {
		r.logError(err, "SetOffset")
		return err
	}
	return nil
}

// ReadMessage reads one message and parses it as an order request, stamping
// the request with its stream offset.
func (r *Reader) ReadMessage(ctx context.Context) (kafka.Message, *orderbookv1.PlaceOrderRequest, error) {
	msg, err := r.kafkaReader.ReadMessage(ctx)
	if err != nil {
		r.logError(err, "ReadMessage")
		return kafka.Message{}, nil, err
	}

	var request orderbookv1.PlaceOrderRequest
	if err := json.Unmarshal(msg.Value, &request); err != nil {
		r.logError(err, "UnmarshalOrderRequest")
		return kafka.Message{}, nil, err
	}

	r.logger.Debug("ReadMessage",
		logger.Field{Key: "offset", Value: msg.Offset},
		logger.Field{Key: "userID", Value: request.UserID},
		logger.Field{Key: "type", Value: string(request.Type)},
		logger.Field{Key: "bid", Value: request.Bid},
		logger.Field{Key: "quantity", Value: request.Quantity},
		logger.Field{Key: "price", Value: request.Price},
	)

	request.Offset = msg.Offset

	return msg, &request, nil
}

// Close properly closes the Kafka reader.
func (r *Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}

// CommitMessages records the messages as processed. The reader runs on an
// explicit partition offset rather than a consumer group, so there is
// nothing to commit; offsets are tracked through snapshots instead.
func (r *Reader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	return nil
}
