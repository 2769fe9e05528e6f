package repository

import (
	"context"
	"errors"

	"aleenascuisine/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	GetByCustomer(ctx context.Context, customerID string) (*models.Cart, error)
	GetByToken(ctx context.Context, token string) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	Save(ctx context.Context, cart *models.Cart) error
	// ReplaceItems destructively swaps the cart's whole line set.
	ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error
	Delete(ctx context.Context, cartID uuid.UUID) (bool, error)
}

type cartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) CartRepo { return &cartRepo{db: db} }

func (r *cartRepo) preload() *gorm.DB {
	return r.db.Preload("Items").Preload("Items.Cake")
}

func (r *cartRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.preload().WithContext(ctx).First(&cart, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cart, err
}

func (r *cartRepo) GetByCustomer(ctx context.Context, customerID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.preload().WithContext(ctx).First(&cart, "customer_id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cart, err
}

func (r *cartRepo) GetByToken(ctx context.Context, token string) (*models.Cart, error) {
	var cart models.Cart
	err := r.preload().WithContext(ctx).First(&cart, "cart_token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cart, err
}

func (r *cartRepo) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *cartRepo) Save(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Omit("Items").Save(cart).Error
}

func (r *cartRepo) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].CartID = cartID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *cartRepo) Delete(ctx context.Context, cartID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Where("id = ?", cartID).Delete(&models.Cart{})
	return tx.RowsAffected > 0, tx.Error
}
