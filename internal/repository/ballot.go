package repository

import (
	"context"

	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BallotRepository interface {
	Create(ctx context.Context, data *entity.Ballot) error
	GetByEventID(ctx context.Context, eventID string) (*entity.Ballot, error)
	UpdateActive(ctx context.Context, eventID string, active bool) error
	AddCategories(ctx context.Context, data []entity.BallotCategory) error
	GetCategoryIDs(ctx context.Context, eventID string) ([]string, error)

	CreateVoterIfNotExists(ctx context.Context, eventID, userID string) (bool, error)
	HasVoter(ctx context.Context, eventID, userID string) (bool, error)
	IncreaseVotes(ctx context.Context, eventID string, newParticipants, votes uint64) error

	CreateVoteRecord(ctx context.Context, data *entity.VoteRecord) error
	HasVoteRecord(ctx context.Context, eventID, userID, categoryID string) (bool, error)
	CountVoteRecords(ctx context.Context, eventID, userID string, categoryIDs []string) (int64, error)
	CreateCommitment(ctx context.Context, data *entity.VoteCommitment) error
}

type ballotRepository struct{}

func NewBallotRepository() *ballotRepository {
	return &ballotRepository{}
}

func (r *ballotRepository) Create(ctx context.Context, data *entity.Ballot) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *ballotRepository) GetByEventID(ctx context.Context, eventID string) (*entity.Ballot, error) {
	var result entity.Ballot
	if err := xcontext.DB(ctx).Take(&result, "event_id=?", eventID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *ballotRepository) UpdateActive(ctx context.Context, eventID string, active bool) error {
	return xcontext.DB(ctx).
		Model(&entity.Ballot{}).
		Where("event_id=?", eventID).
		Update("active", active).Error
}

func (r *ballotRepository) AddCategories(ctx context.Context, data []entity.BallotCategory) error {
	if len(data) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Create(&data).Error
}

func (r *ballotRepository) GetCategoryIDs(ctx context.Context, eventID string) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).
		Model(&entity.BallotCategory{}).
		Where("event_id=?", eventID).
		Order("position ASC").
		Pluck("category_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CreateVoterIfNotExists returns true if this is the first vote of the user in
// the event.
func (r *ballotRepository) CreateVoterIfNotExists(ctx context.Context, eventID, userID string) (bool, error) {
	tx := xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.BallotVoter{EventID: eventID, UserID: userID})
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *ballotRepository) HasVoter(ctx context.Context, eventID, userID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.BallotVoter{}).
		Where("event_id=? AND user_id=?", eventID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *ballotRepository) IncreaseVotes(ctx context.Context, eventID string, newParticipants, votes uint64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Ballot{}).
		Where("event_id=?", eventID).
		Updates(map[string]any{
			"participant_count": gorm.Expr("participant_count+?", newParticipants),
			"total_votes":       gorm.Expr("total_votes+?", votes),
		})

	return updateOne(tx)
}

func (r *ballotRepository) CreateVoteRecord(ctx context.Context, data *entity.VoteRecord) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *ballotRepository) HasVoteRecord(ctx context.Context, eventID, userID, categoryID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.VoteRecord{}).
		Where("event_id=? AND user_id=? AND category_id=?", eventID, userID, categoryID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *ballotRepository) CountVoteRecords(
	ctx context.Context, eventID, userID string, categoryIDs []string,
) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.VoteRecord{}).
		Where("event_id=? AND user_id=? AND category_id IN (?)", eventID, userID, categoryIDs).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *ballotRepository) CreateCommitment(ctx context.Context, data *entity.VoteCommitment) error {
	return xcontext.DB(ctx).Create(data).Error
}
