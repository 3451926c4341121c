package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/sagarchy-05/ecommerce-backend/internal/config"
	"github.com/sagarchy-05/ecommerce-backend/internal/models"
)

// EventType labels order lifecycle events on the wire.
type EventType string

const (
	EventTypeOrderPlaced        EventType = "order.placed"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderCancelled     EventType = "order.cancelled"
)

// OrderEvent is the envelope written to the orders topic.
type OrderEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher emits order lifecycle events. Publishing is best-effort; the
// order engine never fails a request on a publish error.
type Publisher interface {
	OrderPlaced(ctx context.Context, order *models.Order) error
	OrderStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) error
	OrderCancelled(ctx context.Context, order *models.Order) error
	Close() error
}

// KafkaPublisher implements Publisher on a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) OrderPlaced(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.publish(ctx, EventTypeOrderPlaced, order, data)
}

func (p *KafkaPublisher) OrderStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) error {
	payload := struct {
		OrderID        string             `json:"order_id"`
		PreviousStatus models.OrderStatus `json:"previous_status"`
		NewStatus      models.OrderStatus `json:"new_status"`
	}{order.ID, previous, order.Status}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.publish(ctx, EventTypeOrderStatusChanged, order, data)
}

func (p *KafkaPublisher) OrderCancelled(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.publish(ctx, EventTypeOrderCancelled, order, data)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) publish(ctx context.Context, typ EventType, order *models.Order, data json.RawMessage) error {
	event := OrderEvent{
		ID:        uuid.NewString(),
		Type:      typ,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Data:      data,
		Timestamp: time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.ID),
		Value: value,
	})
	if err != nil {
		p.logger.Error("failed to publish order event",
			"type", string(typ), "order_id", order.ID, "error", err)
		return err
	}
	return nil
}

// NopPublisher satisfies Publisher when order events are disabled.
type NopPublisher struct{}

func (NopPublisher) OrderPlaced(context.Context, *models.Order) error { return nil }
func (NopPublisher) OrderStatusChanged(context.Context, *models.Order, models.OrderStatus) error {
	return nil
}
func (NopPublisher) OrderCancelled(context.Context, *models.Order) error { return nil }
func (NopPublisher) Close() error                                        { return nil }
