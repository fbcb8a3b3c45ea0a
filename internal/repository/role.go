package repository

import (
	"context"

	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type RoleRepository interface {
	Grant(ctx context.Context, data *entity.RoleGrant) error
	Revoke(ctx context.Context, role entity.Role, userID string) error
	HasAny(ctx context.Context, userID string, roles ...entity.Role) (bool, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.RoleGrant, error)
}

type roleRepository struct{}

func NewRoleRepository() *roleRepository {
	return &roleRepository{}
}

func (r *roleRepository) Grant(ctx context.Context, data *entity.RoleGrant) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data).Error
}

func (r *roleRepository) Revoke(ctx context.Context, role entity.Role, userID string) error {
	tx := xcontext.DB(ctx).
		Where("role=? AND user_id=?", role, userID).
		Delete(&entity.RoleGrant{})

	return updateOne(tx)
}

func (r *roleRepository) HasAny(ctx context.Context, userID string, roles ...entity.Role) (bool, error) {
	if userID == "" || len(roles) == 0 {
		return false, nil
	}

	var count int64
	err := xcontext.DB(ctx).Model(&entity.RoleGrant{}).
		Where("user_id=? AND role IN (?)", userID, roles).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *roleRepository) GetByUserID(ctx context.Context, userID string) ([]entity.RoleGrant, error) {
	var result []entity.RoleGrant
	if err := xcontext.DB(ctx).Where("user_id=?", userID).Order("role").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
