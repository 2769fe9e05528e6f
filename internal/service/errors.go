package service

import (
	"errors"
	"fmt"

	"aleenascuisine/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// Not found.
	ErrCakeNotFound    = errors.New("cake not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrPaymentNotFound = errors.New("payment not found")

	// Conflicts.
	ErrDuplicateSlug = errors.New("cake slug already exists")

	// Invalid requests.
	ErrCartEmpty                   = errors.New("cart has no items")
	ErrCartItemCakeNotFound        = errors.New("cart item references unknown cake")
	ErrQuantityInvalid             = errors.New("quantity must be > 0")
	ErrInvalidInventoryAdjustment  = errors.New("inventory adjustment would go negative")
	ErrOrderCancellationNotAllowed = errors.New("order cancellation not allowed")

	// Upstream.
	ErrPaymentProviderUnavailable = errors.New("payment provider call failed")
)

// OrderStatusUpdateError rejects a transition missing from the allow-list.
type OrderStatusUpdateError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *OrderStatusUpdateError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// PriceMismatch describes one cart line whose snapshot price diverged from
// the catalog beyond the configured tolerance.
type PriceMismatch struct {
	CakeID       uuid.UUID       `json:"cake_id"`
	CatalogPrice decimal.Decimal `json:"catalog_price"`
	CartPrice    decimal.Decimal `json:"cart_price"`
}

// CartPriceMismatchError carries the full mismatch list for client display.
// It reflects a race between cart creation and a catalog price change, so
// callers surface it as a conflict, never an input error.
type CartPriceMismatchError struct {
	Mismatches []PriceMismatch
}

func (e *CartPriceMismatchError) Error() string {
	return fmt.Sprintf("cart contains %d items priced differently from the catalog", len(e.Mismatches))
}

// InventoryUnavailableError aborts order creation on stock shortfall.
type InventoryUnavailableError struct {
	CakeID uuid.UUID
}

func (e *InventoryUnavailableError) Error() string {
	return fmt.Sprintf("insufficient stock for cake %s", e.CakeID)
}
