package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"aleenascuisine/internal/invoice"
	"aleenascuisine/internal/service"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type paidEnvelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
}

// OrderPaidConsumer reads order.paid events and generates the invoice for
// each paid order. EnsureInvoice is idempotent, so redelivery is safe.
type OrderPaidConsumer struct {
	reader    *kafka.Reader
	generator *invoice.Generator
	log       *zap.Logger
}

func NewOrderPaidConsumer(brokers []string, groupID, topic string, generator *invoice.Generator, log *zap.Logger) *OrderPaidConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          10e3,
		MaxBytes:          10e6,
		CommitInterval:    time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return &OrderPaidConsumer{reader: r, generator: generator, log: log}
}

func (c *OrderPaidConsumer) Run(ctx context.Context) error {
	c.log.Info("order.paid consumer started")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.Error("read message", zap.Error(err))
			continue
		}
		var env paidEnvelope
		if err := json.Unmarshal(m.Value, &env); err != nil {
			c.log.Error("unmarshal envelope", zap.ByteString("value", m.Value), zap.Error(err))
			continue
		}
		var ev service.OrderPaidEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			c.log.Error("unmarshal order paid payload", zap.String("event_id", env.EventID), zap.Error(err))
			continue
		}
		inv, err := c.generator.EnsureInvoice(ctx, ev.OrderID)
		if err != nil {
			c.log.Error("ensure invoice failed", zap.String("order_id", ev.OrderID.String()), zap.Error(err))
			continue
		}
		c.log.Info("invoice ensured",
			zap.String("order_id", ev.OrderID.String()),
			zap.String("invoice_number", inv.InvoiceNumber))
	}
}

func (c *OrderPaidConsumer) Close() error { return c.reader.Close() }
