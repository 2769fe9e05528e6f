package service

import (
	"context"
	"strings"
	"time"

	"aleenascuisine/internal/models"
	"aleenascuisine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CakeInput struct {
	Name          string
	Slug          string
	Description   *string
	Price         decimal.Decimal
	Currency      string
	Category      *string
	IsAvailable   bool
	StockQuantity int
	ImageURL      *string
}

type CakePatch struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	Currency      *string
	Category      *string
	IsAvailable   *bool
	StockQuantity *int
	ImageURL      *string
}

type CatalogService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewCatalogService(repo *repository.Repository, log *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, log: log, now: time.Now}
}

func (s *CatalogService) ListCakes(ctx context.Context, f repository.CakeListFilter) ([]models.Cake, int64, error) {
	return s.repo.Cakes.List(ctx, f)
}

func (s *CatalogService) GetCake(ctx context.Context, id uuid.UUID) (*models.Cake, error) {
	cake, err := s.repo.Cakes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cake == nil {
		return nil, ErrCakeNotFound
	}
	return cake, nil
}

func (s *CatalogService) GetCakeBySlug(ctx context.Context, slug string) (*models.Cake, error) {
	cake, err := s.repo.Cakes.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if cake == nil {
		return nil, ErrCakeNotFound
	}
	return cake, nil
}

func (s *CatalogService) CreateCake(ctx context.Context, in CakeInput) (*models.Cake, error) {
	if in.StockQuantity < 0 {
		return nil, ErrInvalidInventoryAdjustment
	}

	cake := &models.Cake{
		Name:          strings.TrimSpace(in.Name),
		Slug:          strings.TrimSpace(in.Slug),
		Description:   in.Description,
		Price:         in.Price,
		Currency:      in.Currency,
		Category:      in.Category,
		IsAvailable:   in.IsAvailable,
		StockQuantity: in.StockQuantity,
		ImageURL:      in.ImageURL,
	}

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		existing, err := tx.Cakes.GetBySlug(ctx, cake.Slug)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateSlug
		}
		return tx.Cakes.Create(ctx, cake)
	})
	if err != nil {
		return nil, err
	}
	return cake, nil
}

func (s *CatalogService) UpdateCake(ctx context.Context, id uuid.UUID, patch CakePatch) (*models.Cake, error) {
	cake, err := s.GetCake(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if patch.Name != nil {
		fields["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.Currency != nil {
		fields["currency"] = *patch.Currency
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	if patch.IsAvailable != nil {
		fields["is_available"] = *patch.IsAvailable
	}
	if patch.StockQuantity != nil {
		if *patch.StockQuantity < 0 {
			return nil, ErrInvalidInventoryAdjustment
		}
		fields["stock_quantity"] = *patch.StockQuantity
	}
	if patch.ImageURL != nil {
		fields["image_url"] = *patch.ImageURL
	}
	if len(fields) == 0 {
		return cake, nil
	}
	fields["updated_at"] = s.now()

	if err := s.repo.Cakes.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.GetCake(ctx, id)
}

func (s *CatalogService) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (*models.Cake, error) {
	if _, err := s.GetCake(ctx, id); err != nil {
		return nil, err
	}
	fields := map[string]any{"is_available": available, "updated_at": s.now()}
	if err := s.repo.Cakes.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.GetCake(ctx, id)
}

// AdjustInventory applies a signed restock/correction delta. The guarded
// UPDATE refuses adjustments that would push stock below zero.
func (s *CatalogService) AdjustInventory(ctx context.Context, id uuid.UUID, delta int) (*models.Cake, error) {
	if _, err := s.GetCake(ctx, id); err != nil {
		return nil, err
	}
	ok, err := s.repo.Cakes.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidInventoryAdjustment
	}
	return s.GetCake(ctx, id)
}
