package repository

import (
	"context"
	"time"

	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/pkg/xcontext"
)

type ParticipantRepository interface {
	Get(ctx context.Context, eventID, userID string) (*entity.EventParticipant, error)
	Create(ctx context.Context, data *entity.EventParticipant) error
	Delete(ctx context.Context, eventID, userID string) error
	MarkAttended(ctx context.Context, eventID, userID string, at time.Time) error
	GetList(ctx context.Context, eventID string, offset, limit int) ([]entity.EventParticipant, error)
}

type participantRepository struct{}

func NewParticipantRepository() *participantRepository {
	return &participantRepository{}
}

func (r *participantRepository) Get(ctx context.Context, eventID, userID string) (*entity.EventParticipant, error) {
	var result entity.EventParticipant
	err := xcontext.DB(ctx).
		Where("event_id=? AND user_id=?", eventID, userID).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *participantRepository) Create(ctx context.Context, data *entity.EventParticipant) error {
	return xcontext.DB(ctx).Create(data).Error
}

// Delete removes a registration which has not been attended yet.
func (r *participantRepository) Delete(ctx context.Context, eventID, userID string) error {
	tx := xcontext.DB(ctx).
		Where("event_id=? AND user_id=? AND attended=?", eventID, userID, false).
		Delete(&entity.EventParticipant{})

	return updateOne(tx)
}

// MarkAttended flips the attended flag. It fails with gorm.ErrRecordNotFound
// if the participant does not exist or has already attended.
func (r *participantRepository) MarkAttended(ctx context.Context, eventID, userID string, at time.Time) error {
	tx := xcontext.DB(ctx).
		Model(&entity.EventParticipant{}).
		Where("event_id=? AND user_id=? AND attended=?", eventID, userID, false).
		Updates(map[string]any{
			"attended":    true,
			"attended_at": at,
		})

	return updateOne(tx)
}

func (r *participantRepository) GetList(
	ctx context.Context, eventID string, offset, limit int,
) ([]entity.EventParticipant, error) {
	var result []entity.EventParticipant
	err := xcontext.DB(ctx).
		Where("event_id=?", eventID).
		Order("user_id").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
