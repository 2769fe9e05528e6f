package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aleenascuisine/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// Cached order status: order_status:{order_id} -> {"status": "...", "payment_status": "..."}
	keyOrderStatus = "order_status:%s"
)

var ttlStatusCache = 5 * time.Minute

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr}).WithTimeout(2 * time.Second)
}

type statusEntry struct {
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// OrderStatusCache is a read-through cache for order status polling. The
// database stays the source of truth; every entry expires on its own.
type OrderStatusCache struct {
	rdb *redis.Client
}

func NewOrderStatusCache(rdb *redis.Client) *OrderStatusCache {
	return &OrderStatusCache{rdb: rdb}
}

func (c *OrderStatusCache) SetOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus, paymentStatus models.PaymentStatus) error {
	value, err := json.Marshal(statusEntry{
		Status:        status,
		PaymentStatus: paymentStatus,
		UpdatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, fmt.Sprintf(keyOrderStatus, orderID), value, ttlStatusCache).Err()
}

func (c *OrderStatusCache) GetOrderStatus(ctx context.Context, orderID uuid.UUID) (models.OrderStatus, models.PaymentStatus, bool, error) {
	raw, err := c.rdb.Get(ctx, fmt.Sprintf(keyOrderStatus, orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, err
	}
	var entry statusEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return "", "", false, err
	}
	return entry.Status, entry.PaymentStatus, true, nil
}
