package service

import (
	"context"

	"aleenascuisine/internal/models"

	"github.com/google/uuid"
)

// StatusCache is a read-side accelerator for status polling. The database
// stays the source of truth; entries expire on their own and every write
// after a state change overwrites whatever is cached, so there is no
// invalidation surface. Errors are logged by callers, not propagated.
type StatusCache interface {
	SetOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus, paymentStatus models.PaymentStatus) error
	GetOrderStatus(ctx context.Context, orderID uuid.UUID) (status models.OrderStatus, paymentStatus models.PaymentStatus, ok bool, err error)
}
