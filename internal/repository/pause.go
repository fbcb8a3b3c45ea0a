package repository

import (
	"context"

	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type PauseRepository interface {
	Upsert(ctx context.Context, data *entity.Pause) error
	IsPaused(ctx context.Context, ids ...string) (bool, error)
	GetList(ctx context.Context) ([]entity.Pause, error)
}

type pauseRepository struct{}

func NewPauseRepository() *pauseRepository {
	return &pauseRepository{}
}

func (r *pauseRepository) Upsert(ctx context.Context, data *entity.Pause) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"paused", "updated_by", "updated_at"}),
	}).Create(data).Error
}

// IsPaused returns true if any of the given ids is paused.
func (r *pauseRepository) IsPaused(ctx context.Context, ids ...string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Pause{}).
		Where("id IN (?) AND paused=?", ids, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *pauseRepository) GetList(ctx context.Context) ([]entity.Pause, error) {
	var result []entity.Pause
	if err := xcontext.DB(ctx).Where("paused=?", true).Order("id").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
