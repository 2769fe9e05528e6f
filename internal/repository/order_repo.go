package repository

import (
	"context"
	"errors"
	"time"

	"aleenascuisine/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepo interface {
	// Create persists the order together with its items and initial payment.
	Create(ctx context.Context, o *models.Order) error
	// GetByID loads the full aggregate: order, items (with cakes), payments.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	GetByProviderOrderID(ctx context.Context, providerOrderID string) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	// FindExpired returns orders still holding a reservation past its expiry.
	FindExpired(ctx context.Context, now time.Time) ([]models.Order, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) aggregate() *gorm.DB {
	return r.db.Preload("Items").Preload("Items.Cake").Preload("Payments")
}

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	err := r.aggregate().WithContext(ctx).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *orderRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var o models.Order
	err := r.aggregate().WithContext(ctx).First(&o, "idempotency_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *orderRepo) GetByProviderOrderID(ctx context.Context, providerOrderID string) (*models.Order, error) {
	var o models.Order
	err := r.aggregate().WithContext(ctx).First(&o, "provider_order_id = ?", providerOrderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	var list []models.Order
	err := r.aggregate().WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *orderRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepo) FindExpired(ctx context.Context, now time.Time) ([]models.Order, error) {
	var list []models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("status IN ?", []models.OrderStatus{models.OrderStatusCreated, models.OrderStatusPending}).
		Where("payment_status = ?", models.PaymentStatusPending).
		Where("inventory_released = false").
		Where("reservation_expires_at IS NOT NULL").
		Where("reservation_expires_at < ?", now).
		Find(&list).Error
	return list, err
}
