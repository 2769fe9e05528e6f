package notifier

import (
	"context"
	"encoding/json"
	"time"

	"aleenascuisine/internal/service"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TopicOrderNotification = "order.notification"
	TopicOrderPaid         = "order.paid"
	TopicOrderStatus       = "order.status"
)

// envelope wraps every published payload so consumers can dedupe by event id
// and route by type without decoding the body.
type envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	Payload    json.RawMessage `json:"payload"`
}

// KafkaEventBus implements service.EventBus over three topics: confirmations
// for customer notifications, payments for the invoice worker, and status
// changes for anything tracking terminal outcomes.
type KafkaEventBus struct {
	notifications *kafka.Writer
	paid          *kafka.Writer
	status        *kafka.Writer
	producer      string
}

func NewKafkaEventBus(brokers []string, producer string) *KafkaEventBus {
	writer := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		}
	}
	return &KafkaEventBus{
		notifications: writer(TopicOrderNotification),
		paid:          writer(TopicOrderPaid),
		status:        writer(TopicOrderStatus),
		producer:      producer,
	}
}

func (b *KafkaEventBus) PublishOrderConfirmed(ctx context.Context, e service.OrderConfirmedEvent) error {
	return b.publish(ctx, b.notifications, "order.confirmed", e.OrderID.String(), e)
}

func (b *KafkaEventBus) PublishOrderPaid(ctx context.Context, e service.OrderPaidEvent) error {
	return b.publish(ctx, b.paid, "order.paid", e.OrderID.String(), e)
}

func (b *KafkaEventBus) PublishOrderStatusChanged(ctx context.Context, e service.OrderStatusChangedEvent) error {
	return b.publish(ctx, b.status, "order.status_changed", e.OrderID.String(), e)
}

func (b *KafkaEventBus) publish(ctx context.Context, w *kafka.Writer, eventType, key string, payload any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	value, err := json.Marshal(envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Producer:   b.producer,
		Payload:    body,
	})
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{
		// Keyed by order id so per-order events stay ordered.
		Key:   []byte(key),
		Value: value,
	})
}

func (b *KafkaEventBus) Close() error {
	err := b.notifications.Close()
	if e := b.paid.Close(); err == nil {
		err = e
	}
	if e := b.status.Close(); err == nil {
		err = e
	}
	return err
}
