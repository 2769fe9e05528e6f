package repository

import (
	"context"
	"errors"

	"aleenascuisine/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*models.Payment, error)
	// GetByProviderOrderID resolves a payment through its order's provider
	// order reference (webhook fallback lookup).
	GetByProviderOrderID(ctx context.Context, providerOrderID string) (*models.Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	CreateRefund(ctx context.Context, refund *models.Refund) error
	UpdateRefundFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	RecordProviderEvent(ctx context.Context, ev *models.ProviderEvent) error
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepo(db *gorm.DB) PaymentRepo { return &paymentRepo{db: db} }

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *paymentRepo) GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).First(&p, "provider_payment_id = ?", providerPaymentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *paymentRepo) GetByProviderOrderID(ctx context.Context, providerOrderID string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("orders.provider_order_id = ?", providerOrderID).
		Order("payments.created_at ASC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *paymentRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var list []models.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *paymentRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).Updates(fields).Error
}

func (r *paymentRepo) CreateRefund(ctx context.Context, refund *models.Refund) error {
	return r.db.WithContext(ctx).Create(refund).Error
}

func (r *paymentRepo) UpdateRefundFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Refund{}).Where("id = ?", id).Updates(fields).Error
}

func (r *paymentRepo) RecordProviderEvent(ctx context.Context, ev *models.ProviderEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}
