package service

import (
	"context"
	"time"

	"aleenascuisine/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderConfirmedEvent is published once a capture reconciles an order.
type OrderConfirmedEvent struct {
	OrderID     uuid.UUID       `json:"order_id"`
	CustomerID  *string         `json:"customer_id,omitempty"`
	Status      string          `json:"status"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
	ConfirmedAt time.Time       `json:"confirmed_at"`
}

// OrderPaidEvent triggers post-payment work (invoice generation et al).
type OrderPaidEvent struct {
	OrderID    uuid.UUID       `json:"order_id"`
	CustomerID *string         `json:"customer_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	PaidAt     time.Time       `json:"paid_at"`
}

// OrderStatusChangedEvent signals a terminal reconciliation (failure/refund).
type OrderStatusChangedEvent struct {
	OrderID       uuid.UUID          `json:"order_id"`
	CustomerID    *string            `json:"customer_id,omitempty"`
	Status        models.OrderStatus `json:"status"`
	PaymentStatus string             `json:"payment_status"`
	ChangedAt     time.Time          `json:"changed_at"`
}

// EventBus decouples notification dispatch from the state machine. Publish
// failures are logged by callers, never allowed to fail the transaction that
// already committed.
type EventBus interface {
	PublishOrderConfirmed(ctx context.Context, e OrderConfirmedEvent) error
	PublishOrderPaid(ctx context.Context, e OrderPaidEvent) error
	PublishOrderStatusChanged(ctx context.Context, e OrderStatusChangedEvent) error
}
