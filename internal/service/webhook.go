package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PaymentEventKind is the tagged variant the webhook boundary decodes into.
// Malformed shapes are rejected here instead of leaking optional-chained
// lookups into the state machine.
type PaymentEventKind string

const (
	PaymentEventCaptured   PaymentEventKind = "captured"
	PaymentEventAuthorized PaymentEventKind = "authorized"
	PaymentEventFailed     PaymentEventKind = "failed"
	PaymentEventRefunded   PaymentEventKind = "refunded"
	PaymentEventUnknown    PaymentEventKind = "unknown"
)

// PaymentEvent is an already-verified provider event, normalized. Signature
// verification happens before this layer.
type PaymentEvent struct {
	Kind              PaymentEventKind
	Event             string
	ProviderPaymentID string
	ProviderOrderID   string
	// EntityStatus is the raw payment entity status from the payload; it is
	// persisted onto the Payment row as-is (falls back to the event name).
	EntityStatus string
	Raw          json.RawMessage
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				Status  string `json:"status"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// DecodePaymentEvent parses the provider webhook body into a PaymentEvent.
func DecodePaymentEvent(body []byte) (PaymentEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return PaymentEvent{}, fmt.Errorf("decode payment event: %w", err)
	}
	if env.Event == "" {
		return PaymentEvent{}, fmt.Errorf("decode payment event: missing event type")
	}

	entity := env.Payload.Payment.Entity
	providerOrderID := entity.OrderID
	if providerOrderID == "" {
		providerOrderID = env.Payload.Order.Entity.ID
	}

	status := entity.Status
	if status == "" {
		status = env.Event
	}

	ev := PaymentEvent{
		Kind:              classifyEvent(env.Event, entity.Status),
		Event:             env.Event,
		ProviderPaymentID: entity.ID,
		ProviderOrderID:   providerOrderID,
		EntityStatus:      status,
		Raw:               append(json.RawMessage(nil), body...),
	}
	return ev, nil
}

func classifyEvent(event, entityStatus string) PaymentEventKind {
	if strings.HasPrefix(event, "refund") {
		return PaymentEventRefunded
	}
	status := entityStatus
	if status == "" {
		status = event
	}
	switch status {
	case "captured":
		return PaymentEventCaptured
	case "authorized":
		return PaymentEventAuthorized
	case "failed", "declined":
		return PaymentEventFailed
	default:
		return PaymentEventUnknown
	}
}
