// Package events publishes domain events for downstream consumers such as
// the kitchen display and notification services.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"restaurant-be/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const OrderPlacedType = "order.placed"

type OrderPlaced struct {
	Type        string    `json:"type"`
	OrderID     int64     `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	TotalPrice  string    `json:"total_price"`
	PromoCodeID *int64    `json:"promo_code_id,omitempty"`
	LineCount   int       `json:"line_count"`
	PlacedAt    time.Time `json:"placed_at"`
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, msg OrderPlaced) error
}

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	Writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

// NewKafkaWriter builds a writer for topic that hashes keys so events of
// one order stay on one partition.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, msg OrderPlaced) error {
	msg.Type = OrderPlacedType
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(msg.OrderID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(OrderPlacedType)},
		},
	})
	if err != nil {
		logger.ForMethod(ctx, "events", "PublishOrderPlaced").
			Error("failed to publish event", zap.Int64("order_id", msg.OrderID), zap.Error(err))
		return err
	}
	return nil
}

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }
