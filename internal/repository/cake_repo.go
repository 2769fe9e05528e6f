package repository

import (
	"context"
	"errors"
	"strings"

	"aleenascuisine/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CakeListFilter struct {
	Search   string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Page     int
	PageSize int
}

type CakeRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Cake, error)
	GetBySlug(ctx context.Context, slug string) (*models.Cake, error)
	List(ctx context.Context, f CakeListFilter) ([]models.Cake, int64, error)
	Create(ctx context.Context, c *models.Cake) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	CountByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)

	// Reserve atomically decrements stock when enough is available; the
	// returned bool is false on shortfall and nothing changes.
	Reserve(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	// Release unconditionally restocks.
	Release(ctx context.Context, id uuid.UUID, quantity int) error
	// AdjustStock applies a signed delta, refusing to go negative.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (bool, error)
}

type cakeRepo struct{ db *gorm.DB }

func NewCakeRepo(db *gorm.DB) CakeRepo { return &cakeRepo{db: db} }

func (r *cakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Cake, error) {
	var c models.Cake
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *cakeRepo) GetBySlug(ctx context.Context, slug string) (*models.Cake, error) {
	var c models.Cake
	err := r.db.WithContext(ctx).First(&c, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *cakeRepo) List(ctx context.Context, f CakeListFilter) ([]models.Cake, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Cake{})

	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"lower(name) LIKE ? OR lower(slug) LIKE ? OR lower(coalesce(description, '')) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if f.Category != "" {
		q = q.Where("lower(category) = ?", strings.ToLower(f.Category))
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size <= 0 {
		size = 20
	}

	var cakes []models.Cake
	err := q.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&cakes).Error
	return cakes, total, err
}

func (r *cakeRepo) Create(ctx context.Context, c *models.Cake) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cakeRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Cake{}).Where("id = ?", id).Updates(fields).Error
}

func (r *cakeRepo) CountByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.Cake{}).Where("id IN ?", ids).Count(&cnt).Error
	return cnt, err
}

func (r *cakeRepo) Reserve(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE cakes
SET stock_quantity = stock_quantity - @q,
    updated_at = now()
WHERE id = @id
  AND stock_quantity >= @q
`, map[string]any{"id": id, "q": quantity})
	return tx.RowsAffected > 0, tx.Error
}

func (r *cakeRepo) Release(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE cakes
SET stock_quantity = stock_quantity + @q,
    updated_at = now()
WHERE id = @id
`, map[string]any{"id": id, "q": quantity}).Error
}

func (r *cakeRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE cakes
SET stock_quantity = stock_quantity + @delta,
    updated_at = now()
WHERE id = @id
  AND stock_quantity + @delta >= 0
`, map[string]any{"id": id, "delta": delta})
	return tx.RowsAffected > 0, tx.Error
}
