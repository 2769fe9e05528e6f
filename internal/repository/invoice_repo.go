package repository

import (
	"context"
	"errors"

	"aleenascuisine/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceRepo interface {
	Create(ctx context.Context, inv *models.Invoice) error
	GetLatestForOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error)
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepo(db *gorm.DB) InvoiceRepo { return &invoiceRepo{db: db} }

func (r *invoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *invoiceRepo) GetLatestForOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &inv, err
}
