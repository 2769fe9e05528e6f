package provider

import (
	"context"
	"fmt"
	"sync"

	"aleenascuisine/internal/service"
)

// Stub is an in-memory provider for tests and local development. It hands
// out deterministic order and refund ids and accepts every signature.
type Stub struct {
	mu      sync.Mutex
	orders  int
	refunds int
}

func NewStub() *Stub { return &Stub{} }

func (s *Stub) CreateOrder(ctx context.Context, in service.ProviderOrderInput) (service.ProviderOrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders++
	return service.ProviderOrderResult{
		ID:     fmt.Sprintf("order_stub_%05d", s.orders),
		Status: "created",
	}, nil
}

func (s *Stub) RequestRefund(ctx context.Context, in service.ProviderRefundInput) (service.ProviderRefundResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refunds++
	return service.ProviderRefundResult{
		ID:     fmt.Sprintf("rfnd_%05d", s.refunds),
		Status: "processed",
	}, nil
}

func (s *Stub) VerifyWebhookSignature(body []byte, signature string) error { return nil }
