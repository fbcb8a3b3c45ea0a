package repository

import (
	"context"
	"fmt"

	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, data *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Category, error)
	GetList(ctx context.Context, includeInactive bool) ([]entity.Category, error)
	UpdateActive(ctx context.Context, id string, active bool) error
	IncreaseRating(ctx context.Context, id string, rating int) error
}

type categoryRepository struct{}

func NewCategoryRepository() *categoryRepository {
	return &categoryRepository{}
}

func (r *categoryRepository) Create(ctx context.Context, data *entity.Category) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	var result entity.Category
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *categoryRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Category, error) {
	var result []entity.Category
	if err := xcontext.DB(ctx).Where("id IN (?)", ids).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *categoryRepository) GetList(ctx context.Context, includeInactive bool) ([]entity.Category, error) {
	var result []entity.Category
	tx := xcontext.DB(ctx).Order("created_at ASC")
	if !includeInactive {
		tx = tx.Where("active=?", true)
	}

	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *categoryRepository) UpdateActive(ctx context.Context, id string, active bool) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Category{}).
		Where("id=?", id).
		Update("active", active)

	return updateOne(tx)
}

// IncreaseRating adds one vote to the histogram bucket of rating and to the
// total, so the bucket sum always equals the total.
func (r *categoryRepository) IncreaseRating(ctx context.Context, id string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("invalid rating %d", rating)
	}

	bucket := fmt.Sprintf("rating%d", rating)
	tx := xcontext.DB(ctx).
		Model(&entity.Category{}).
		Where("id=? AND active=?", id, true).
		Updates(map[string]any{
			"total_votes": gorm.Expr("total_votes+1"),
			bucket:        gorm.Expr(bucket + "+1"),
		})

	return updateOne(tx)
}
