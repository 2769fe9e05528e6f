package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aleenascuisine/internal/models"
	"aleenascuisine/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Generator produces at most one invoice per order. Replayed order.paid
// events find the existing invoice and return it unchanged.
type Generator struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewGenerator(repo *repository.Repository, log *zap.Logger) *Generator {
	return &Generator{repo: repo, log: log, now: time.Now}
}

func (g *Generator) EnsureInvoice(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	existing, err := g.repo.Invoices.GetLatestForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	order, err := g.repo.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %s not found", orderID)
	}

	inv := &models.Invoice{
		OrderID:       order.ID,
		InvoiceNumber: invoiceNumber(g.now(), order.ID),
		Total:         order.Total,
		Currency:      order.Currency,
	}
	if err := g.repo.Invoices.Create(ctx, inv); err != nil {
		// Lost a race against another worker; the winner's invoice stands.
		existing, lookupErr := g.repo.Invoices.GetLatestForOrder(ctx, orderID)
		if lookupErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	g.log.Info("invoice generated",
		zap.String("order_id", order.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber))
	return inv, nil
}

// invoiceNumber is unique per order: date for human sorting, order id suffix
// for uniqueness. INV-20260830-1A2B3C4D.
func invoiceNumber(now time.Time, orderID uuid.UUID) string {
	short := strings.ToUpper(strings.ReplaceAll(orderID.String(), "-", ""))[:8]
	return fmt.Sprintf("INV-%s-%s", now.UTC().Format("20060102"), short)
}
