package repository

import (
	"context"

	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type RedemptionRepository interface {
	Create(ctx context.Context, data *entity.Redemption) error
	GetByID(ctx context.Context, id string) (*entity.Redemption, error)
	GetListByUserID(ctx context.Context, userID string, offset, limit int) ([]entity.Redemption, error)
	UpdateStatus(
		ctx context.Context, id string, from []entity.RedemptionStatus, to entity.RedemptionStatus, trackingInfo string,
	) error

	AddSupportedLedger(ctx context.Context, data *entity.SupportedLedger) error
	RemoveSupportedLedger(ctx context.Context, ledgerID string) error
	IsSupportedLedger(ctx context.Context, ledgerID string) (bool, error)
}

type redemptionRepository struct{}

func NewRedemptionRepository() *redemptionRepository {
	return &redemptionRepository{}
}

func (r *redemptionRepository) Create(ctx context.Context, data *entity.Redemption) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *redemptionRepository) GetByID(ctx context.Context, id string) (*entity.Redemption, error) {
	var result entity.Redemption
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *redemptionRepository) GetListByUserID(
	ctx context.Context, userID string, offset, limit int,
) ([]entity.Redemption, error) {
	var result []entity.Redemption
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("created_at ASC").Order("id").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateStatus moves the order to status "to" only if its current status is
// one of "from". An empty trackingInfo keeps the current one.
func (r *redemptionRepository) UpdateStatus(
	ctx context.Context, id string, from []entity.RedemptionStatus, to entity.RedemptionStatus, trackingInfo string,
) error {
	updates := map[string]any{"status": to}
	if trackingInfo != "" {
		updates["tracking_info"] = trackingInfo
	}

	tx := xcontext.DB(ctx).
		Model(&entity.Redemption{}).
		Where("id=? AND status IN (?)", id, from).
		Updates(updates)

	return updateOne(tx)
}

func (r *redemptionRepository) AddSupportedLedger(ctx context.Context, data *entity.SupportedLedger) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data).Error
}

func (r *redemptionRepository) RemoveSupportedLedger(ctx context.Context, ledgerID string) error {
	tx := xcontext.DB(ctx).
		Where("ledger_id=?", ledgerID).
		Delete(&entity.SupportedLedger{})

	return updateOne(tx)
}

func (r *redemptionRepository) IsSupportedLedger(ctx context.Context, ledgerID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.SupportedLedger{}).
		Where("ledger_id=?", ledgerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
