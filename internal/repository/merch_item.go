package repository

import (
	"context"

	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MerchItemRepository interface {
	Create(ctx context.Context, data *entity.MerchItem) error
	GetByID(ctx context.Context, id string) (*entity.MerchItem, error)
	GetList(ctx context.Context, includeInactive bool, offset, limit int) ([]entity.MerchItem, error)
	UpdateByID(ctx context.Context, id string, data map[string]any) error
	DecreaseStock(ctx context.Context, id string, quantity uint64) error
	IncreaseStock(ctx context.Context, id string, quantity uint64) error

	GetRedemptionCount(ctx context.Context, userID, itemID string) (uint64, error)
	IncreaseRedemptionCount(ctx context.Context, userID, itemID string, quantity, max uint64) error
	DecreaseRedemptionCount(ctx context.Context, userID, itemID string, quantity uint64) error
}

type merchItemRepository struct{}

func NewMerchItemRepository() *merchItemRepository {
	return &merchItemRepository{}
}

func (r *merchItemRepository) Create(ctx context.Context, data *entity.MerchItem) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *merchItemRepository) GetByID(ctx context.Context, id string) (*entity.MerchItem, error) {
	var result entity.MerchItem
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *merchItemRepository) GetList(
	ctx context.Context, includeInactive bool, offset, limit int,
) ([]entity.MerchItem, error) {
	var result []entity.MerchItem
	tx := xcontext.DB(ctx).Order("created_at ASC").Offset(offset).Limit(limit)
	if !includeInactive {
		tx = tx.Where("active=?", true)
	}

	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *merchItemRepository) UpdateByID(ctx context.Context, id string, data map[string]any) error {
	tx := xcontext.DB(ctx).
		Model(&entity.MerchItem{}).
		Where("id=?", id).
		Updates(data)

	return updateOne(tx)
}

// DecreaseStock fails with gorm.ErrRecordNotFound if the stock is lower than
// quantity.
func (r *merchItemRepository) DecreaseStock(ctx context.Context, id string, quantity uint64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.MerchItem{}).
		Where("id=? AND stock>=?", id, quantity).
		Update("stock", gorm.Expr("stock-?", quantity))

	return updateOne(tx)
}

func (r *merchItemRepository) IncreaseStock(ctx context.Context, id string, quantity uint64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.MerchItem{}).
		Where("id=?", id).
		Update("stock", gorm.Expr("stock+?", quantity))

	return updateOne(tx)
}

func (r *merchItemRepository) GetRedemptionCount(ctx context.Context, userID, itemID string) (uint64, error) {
	var result entity.ItemRedemptionCount
	err := xcontext.DB(ctx).
		Where("user_id=? AND item_id=?", userID, itemID).
		Limit(1).
		Find(&result).Error
	if err != nil {
		return 0, err
	}

	return result.Quantity, nil
}

// IncreaseRedemptionCount fails with gorm.ErrRecordNotFound if the new count
// would exceed max.
func (r *merchItemRepository) IncreaseRedemptionCount(
	ctx context.Context, userID, itemID string, quantity, max uint64,
) error {
	err := xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.ItemRedemptionCount{UserID: userID, ItemID: itemID}).Error
	if err != nil {
		return err
	}

	tx := xcontext.DB(ctx).
		Model(&entity.ItemRedemptionCount{}).
		Where("user_id=? AND item_id=? AND quantity+?<=?", userID, itemID, quantity, max).
		Update("quantity", gorm.Expr("quantity+?", quantity))

	return updateOne(tx)
}

func (r *merchItemRepository) DecreaseRedemptionCount(
	ctx context.Context, userID, itemID string, quantity uint64,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.ItemRedemptionCount{}).
		Where("user_id=? AND item_id=? AND quantity>=?", userID, itemID, quantity).
		Update("quantity", gorm.Expr("quantity-?", quantity))

	return updateOne(tx)
}
