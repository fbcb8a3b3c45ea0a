package repository

import (
	"context"

	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RewardLedgerRepository interface {
	Create(ctx context.Context, data *entity.RewardLedger) error
	GetByID(ctx context.Context, id string) (*entity.RewardLedger, error)
	GetByEventID(ctx context.Context, eventID string) (*entity.RewardLedger, error)

	GetAccount(ctx context.Context, ledgerID, userID string) (*entity.LedgerAccount, error)
	CreateAccountIfNotExists(ctx context.Context, ledgerID, userID string) error
	ClaimAttendance(ctx context.Context, ledgerID, userID string, amount uint64) error
	ClaimSurvey(ctx context.Context, ledgerID, userID string, amount uint64) error
	DecreaseBalance(ctx context.Context, ledgerID, userID string, amount uint64) error
	GetTopEarners(ctx context.Context, ledgerID string, limit int) ([]entity.LedgerAccount, error)

	CreateEntry(ctx context.Context, data *entity.LedgerEntry) error
	GetEntries(ctx context.Context, ledgerID, userID string, offset, limit int) ([]entity.LedgerEntry, error)
}

type rewardLedgerRepository struct{}

func NewRewardLedgerRepository() *rewardLedgerRepository {
	return &rewardLedgerRepository{}
}

func (r *rewardLedgerRepository) Create(ctx context.Context, data *entity.RewardLedger) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *rewardLedgerRepository) GetByID(ctx context.Context, id string) (*entity.RewardLedger, error) {
	var result entity.RewardLedger
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *rewardLedgerRepository) GetByEventID(ctx context.Context, eventID string) (*entity.RewardLedger, error) {
	var result entity.RewardLedger
	if err := xcontext.DB(ctx).Take(&result, "event_id=?", eventID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *rewardLedgerRepository) GetAccount(ctx context.Context, ledgerID, userID string) (*entity.LedgerAccount, error) {
	var result entity.LedgerAccount
	err := xcontext.DB(ctx).
		Where("ledger_id=? AND user_id=?", ledgerID, userID).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *rewardLedgerRepository) CreateAccountIfNotExists(ctx context.Context, ledgerID, userID string) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.LedgerAccount{LedgerID: ledgerID, UserID: userID}).Error
}

// ClaimAttendance flips the attendance flag and credits amount. It fails with
// gorm.ErrRecordNotFound if the flag is already set.
func (r *rewardLedgerRepository) ClaimAttendance(ctx context.Context, ledgerID, userID string, amount uint64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.LedgerAccount{}).
		Where("ledger_id=? AND user_id=? AND attendance_claimed=?", ledgerID, userID, false).
		Updates(map[string]any{
			"attendance_claimed": true,
			"balance":            gorm.Expr("balance+?", amount),
			"total_earned":       gorm.Expr("total_earned+?", amount),
		})

	return updateOne(tx)
}

// ClaimSurvey flips the survey flag and credits amount. The attendance flag
// must already be set.
func (r *rewardLedgerRepository) ClaimSurvey(ctx context.Context, ledgerID, userID string, amount uint64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.LedgerAccount{}).
		Where("ledger_id=? AND user_id=? AND attendance_claimed=? AND survey_claimed=?",
			ledgerID, userID, true, false).
		Updates(map[string]any{
			"survey_claimed": true,
			"balance":        gorm.Expr("balance+?", amount),
			"total_earned":   gorm.Expr("total_earned+?", amount),
		})

	return updateOne(tx)
}

// DecreaseBalance fails with gorm.ErrRecordNotFound if the balance is lower
// than amount.
func (r *rewardLedgerRepository) DecreaseBalance(ctx context.Context, ledgerID, userID string, amount uint64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.LedgerAccount{}).
		Where("ledger_id=? AND user_id=? AND balance>=?", ledgerID, userID, amount).
		Updates(map[string]any{
			"balance":     gorm.Expr("balance-?", amount),
			"total_spent": gorm.Expr("total_spent+?", amount),
		})

	return updateOne(tx)
}

func (r *rewardLedgerRepository) GetTopEarners(ctx context.Context, ledgerID string, limit int) ([]entity.LedgerAccount, error) {
	var result []entity.LedgerAccount
	err := xcontext.DB(ctx).
		Where("ledger_id=? AND total_earned>0", ledgerID).
		Order("total_earned DESC").Order("user_id").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *rewardLedgerRepository) CreateEntry(ctx context.Context, data *entity.LedgerEntry) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *rewardLedgerRepository) GetEntries(
	ctx context.Context, ledgerID, userID string, offset, limit int,
) ([]entity.LedgerEntry, error) {
	var result []entity.LedgerEntry
	err := xcontext.DB(ctx).
		Where("ledger_id=? AND user_id=?", ledgerID, userID).
		Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
