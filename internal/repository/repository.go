package repository

import (
	"context"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB

	Cakes    CakeRepo
	Carts    CartRepo
	Orders   OrderRepo
	Payments PaymentRepo
	Invoices InvoiceRepo
}

func New(db *gorm.DB) *Repository {
	return &Repository{
		db:       db,
		Cakes:    NewCakeRepo(db),
		Carts:    NewCartRepo(db),
		Orders:   NewOrderRepo(db),
		Payments: NewPaymentRepo(db),
		Invoices: NewInvoiceRepo(db),
	}
}

// WithTx runs fn against a Repository bound to a single database transaction.
// Inventory and order/payment writes inside one state change must commit or
// roll back together.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
