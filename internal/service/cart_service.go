package service

import (
	"context"
	"time"

	"aleenascuisine/internal/models"
	"aleenascuisine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CartLineInput struct {
	CakeID    uuid.UUID
	Quantity  int
	PriceEach decimal.Decimal
}

type CartService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewCartService(repo *repository.Repository, log *zap.Logger) *CartService {
	return &CartService{repo: repo, log: log, now: time.Now}
}

// UpsertCart finds the cart by customer first, then by token, creating one
// when neither matches. The line set is replaced wholesale: last write wins,
// there is no merging. Stock is deliberately not checked here, only that
// every referenced cake exists.
func (s *CartService) UpsertCart(ctx context.Context, customerID, cartToken *string, items []CartLineInput) (*models.Cart, error) {
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, ErrQuantityInvalid
		}
	}

	var cartID uuid.UUID
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := s.validateCakeIDs(ctx, tx, items); err != nil {
			return err
		}

		cart, err := s.findCart(ctx, tx, customerID, cartToken)
		if err != nil {
			return err
		}
		if cart == nil {
			cart = &models.Cart{CustomerID: customerID, CartToken: cartToken}
			if err := tx.Carts.Create(ctx, cart); err != nil {
				return err
			}
		}

		if customerID != nil {
			cart.CustomerID = customerID
		}
		cart.CartToken = ensureCartToken(cart.CartToken, cartToken)
		cart.UpdatedAt = s.now()
		if err := tx.Carts.Save(ctx, cart); err != nil {
			return err
		}

		lines := make([]models.CartItem, 0, len(items))
		for _, it := range items {
			lines = append(lines, models.CartItem{
				CakeID:    it.CakeID,
				Quantity:  it.Quantity,
				PriceEach: it.PriceEach,
			})
		}
		if err := tx.Carts.ReplaceItems(ctx, cart.ID, lines); err != nil {
			return err
		}
		cartID = cart.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Carts.GetByID(ctx, cartID)
}

// GetCartByReference resolves a cart by id or by guest token.
func (s *CartService) GetCartByReference(ctx context.Context, reference string) (*models.Cart, error) {
	if id, err := uuid.Parse(reference); err == nil {
		cart, err := s.repo.Carts.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if cart != nil {
			return cart, nil
		}
	}
	cart, err := s.repo.Carts.GetByToken(ctx, reference)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

func (s *CartService) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	deleted, err := s.repo.Carts.Delete(ctx, cartID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCartNotFound
	}
	return nil
}

// ValidatePrices compares each line's snapshot price against the catalog.
// Mismatches beyond tolerance are returned for the caller to reject with;
// prices are never auto-corrected.
func ValidatePrices(cart *models.Cart, tolerance decimal.Decimal) ([]PriceMismatch, error) {
	tolerance = tolerance.Abs()
	var mismatches []PriceMismatch
	for _, item := range cart.Items {
		if item.Cake == nil {
			return nil, ErrCartItemCakeNotFound
		}
		diff := item.Cake.Price.Sub(item.PriceEach).Abs()
		if diff.GreaterThan(tolerance) {
			mismatches = append(mismatches, PriceMismatch{
				CakeID:       item.CakeID,
				CatalogPrice: item.Cake.Price.Round(2),
				CartPrice:    item.PriceEach.Round(2),
			})
		}
	}
	return mismatches, nil
}

// CartTotals prices the cart with the given rules, sharing the exact
// rounding used at order persistence.
func CartTotals(cart *models.Cart, rules PricingRules) Totals {
	lines := make([]PricedLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, PricedLine{PriceEach: item.PriceEach, Quantity: item.Quantity})
	}
	return ComputeTotals(lines, rules)
}

func (s *CartService) findCart(ctx context.Context, tx *repository.Repository, customerID, cartToken *string) (*models.Cart, error) {
	if customerID != nil && *customerID != "" {
		cart, err := tx.Carts.GetByCustomer(ctx, *customerID)
		if err != nil || cart != nil {
			return cart, err
		}
	}
	if cartToken != nil && *cartToken != "" {
		return tx.Carts.GetByToken(ctx, *cartToken)
	}
	return nil, nil
}

func (s *CartService) validateCakeIDs(ctx context.Context, tx *repository.Repository, items []CartLineInput) error {
	seen := map[uuid.UUID]struct{}{}
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.CakeID]; ok {
			continue
		}
		seen[it.CakeID] = struct{}{}
		ids = append(ids, it.CakeID)
	}
	if len(ids) == 0 {
		return nil
	}
	cnt, err := tx.Cakes.CountByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if cnt != int64(len(ids)) {
		return ErrCartItemCakeNotFound
	}
	return nil
}

// ensureCartToken keeps the existing token unless the caller supplied one;
// entirely new carts get a generated token.
func ensureCartToken(existing, requested *string) *string {
	if requested != nil && *requested != "" {
		return requested
	}
	if existing != nil && *existing != "" {
		return existing
	}
	token := uuid.NewString()
	return &token
}
