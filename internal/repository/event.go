package repository

import (
	"context"
	"time"

	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"gorm.io/gorm"
)

type EventRepository interface {
	Create(ctx context.Context, data *entity.Event) error
	GetByID(ctx context.Context, id string) (*entity.Event, error)
	UpdateByID(ctx context.Context, id string, data map[string]any) error
	UpdateStatus(ctx context.Context, id string, from, to entity.EventStatus) error
	GetListByStatus(ctx context.Context, statuses []entity.EventStatus, offset, limit int) ([]entity.Event, error)
	GetUpcoming(ctx context.Context, now time.Time, offset, limit int) ([]entity.Event, error)
	GetVotingExpired(ctx context.Context, now time.Time) ([]entity.Event, error)
	IncreaseRegistered(ctx context.Context, id string) error
	DecreaseRegistered(ctx context.Context, id string) error
	IncreaseParticipant(ctx context.Context, id string) error
	IncreaseAttendee(ctx context.Context, id string) error
}

type eventRepository struct{}

func NewEventRepository() *eventRepository {
	return &eventRepository{}
}

func (r *eventRepository) Create(ctx context.Context, data *entity.Event) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	var result entity.Event
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *eventRepository) UpdateByID(ctx context.Context, id string, data map[string]any) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Event{}).
		Where("id=?", id).
		Updates(data)

	return updateOne(tx)
}

// UpdateStatus moves the event to status "to" only if it is still in "from".
func (r *eventRepository) UpdateStatus(ctx context.Context, id string, from, to entity.EventStatus) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Event{}).
		Where("id=? AND status=?", id, from).
		Update("status", to)

	return updateOne(tx)
}

func (r *eventRepository) GetListByStatus(
	ctx context.Context, statuses []entity.EventStatus, offset, limit int,
) ([]entity.Event, error) {
	var result []entity.Event
	err := xcontext.DB(ctx).
		Where("status IN (?)", statuses).
		Order("start_time ASC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *eventRepository) GetUpcoming(ctx context.Context, now time.Time, offset, limit int) ([]entity.Event, error) {
	var result []entity.Event
	err := xcontext.DB(ctx).
		Where("status=? AND start_time>?", entity.EventCreated, now).
		Order("start_time ASC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *eventRepository) GetVotingExpired(ctx context.Context, now time.Time) ([]entity.Event, error) {
	var result []entity.Event
	err := xcontext.DB(ctx).
		Where("status=? AND voting_end<=?", entity.EventVotingOpen, now).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// IncreaseRegistered takes a seat for a registration. It fails with
// gorm.ErrRecordNotFound when the event is full.
func (r *eventRepository) IncreaseRegistered(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Event{}).
		Where("id=? AND participant_count<capacity", id).
		Updates(map[string]any{
			"registered_count":  gorm.Expr("registered_count+1"),
			"participant_count": gorm.Expr("participant_count+1"),
		})

	return updateOne(tx)
}

func (r *eventRepository) DecreaseRegistered(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Event{}).
		Where("id=? AND registered_count>0 AND participant_count>0", id).
		Updates(map[string]any{
			"registered_count":  gorm.Expr("registered_count-1"),
			"participant_count": gorm.Expr("participant_count-1"),
		})

	return updateOne(tx)
}

// IncreaseParticipant takes a seat for a walk-in attendee.
func (r *eventRepository) IncreaseParticipant(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Event{}).
		Where("id=? AND participant_count<capacity", id).
		Update("participant_count", gorm.Expr("participant_count+1"))

	return updateOne(tx)
}

func (r *eventRepository) IncreaseAttendee(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Event{}).
		Where("id=?", id).
		Update("attendee_count", gorm.Expr("attendee_count+1"))

	return updateOne(tx)
}
