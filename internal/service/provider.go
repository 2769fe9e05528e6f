package service

import (
	"context"
)

// ProviderOrderInput mirrors the gateway's order-create contract. Amounts are
// in the currency's minor units (paise for INR).
type ProviderOrderInput struct {
	AmountMinorUnits int64
	Currency         string
	Receipt          string
	Notes            map[string]string
	TestMode         bool
}

type ProviderOrderResult struct {
	ID       string
	Status   string
	Amount   int64
	Currency string
}

type ProviderRefundInput struct {
	ProviderPaymentID string
	// AmountMinorUnits nil means full refund.
	AmountMinorUnits *int64
	Notes            map[string]string
}

type ProviderRefundResult struct {
	ID     string
	Status string
	Amount int64
}

// PaymentProvider is the external gateway collaborator. The core calls
// CreateOrder once per order and RequestRefund on refund initiation; webhook
// events flow back through ApplyPaymentEvent. No automatic retries here,
// retry policy belongs to the caller.
type PaymentProvider interface {
	CreateOrder(ctx context.Context, in ProviderOrderInput) (ProviderOrderResult, error)
	RequestRefund(ctx context.Context, in ProviderRefundInput) (ProviderRefundResult, error)
}
