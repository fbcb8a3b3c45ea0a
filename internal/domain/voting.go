package domain

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/questx-lab/eventreward/internal/common"
	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/internal/model"
	"github.com/questx-lab/eventreward/internal/repository"
	"github.com/questx-lab/eventreward/pkg/crypto"
	"github.com/questx-lab/eventreward/pkg/dateutil"
	"github.com/questx-lab/eventreward/pkg/errorx"
	"github.com/questx-lab/eventreward/pkg/pubsub"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

const saltSize = 32

// SurveyRewardBridge lets the tally ask for the survey reward of a voter
// without knowing how events and ledgers are tied together.
type SurveyRewardBridge interface {
	ResolveRewardLedger(ctx context.Context, eventID string) (string, bool)
	RequestSurveyReward(ctx context.Context, eventID, userID string) error
}

type VotingDomain interface {
	CreateCategory(context.Context, *model.CreateCategoryRequest) (*model.CreateCategoryResponse, error)
	ToggleCategory(context.Context, *model.ToggleCategoryRequest) (*model.ToggleCategoryResponse, error)
	GetCategory(context.Context, *model.GetCategoryRequest) (*model.GetCategoryResponse, error)
	GetCategories(context.Context, *model.GetCategoriesRequest) (*model.GetCategoriesResponse, error)
	AddEventCategories(context.Context, *model.AddEventCategoriesRequest) (*model.AddEventCategoriesResponse, error)

	Vote(context.Context, *model.VoteRequest) (*model.VoteResponse, error)
	BatchVote(context.Context, *model.BatchVoteRequest) (*model.BatchVoteResponse, error)

	GetCategoryResults(context.Context, *model.GetCategoryResultsRequest) (*model.GetCategoryResultsResponse, error)
	GetRatingDistribution(context.Context, *model.GetRatingDistributionRequest) (*model.GetRatingDistributionResponse, error)
	GetAverageRating(context.Context, *model.GetAverageRatingRequest) (*model.GetAverageRatingResponse, error)
	HasVoted(context.Context, *model.HasVotedRequest) (*model.HasVotedResponse, error)
	HasVotedCategory(context.Context, *model.HasVotedCategoryRequest) (*model.HasVotedCategoryResponse, error)
}

type votingDomain struct {
	categoryRepo repository.CategoryRepository
	ballotRepo   repository.BallotRepository
	bridge       SurveyRewardBridge
	roleVerifier *common.RoleVerifier
	pauseGuard   *common.PauseGuard
	writerLock   *common.WriterLock
	publisher    pubsub.Publisher
}

func NewVotingDomain(
	categoryRepo repository.CategoryRepository,
	ballotRepo repository.BallotRepository,
	bridge SurveyRewardBridge,
	roleVerifier *common.RoleVerifier,
	pauseGuard *common.PauseGuard,
	writerLock *common.WriterLock,
	publisher pubsub.Publisher,
) *votingDomain {
	return &votingDomain{
		categoryRepo: categoryRepo,
		ballotRepo:   ballotRepo,
		bridge:       bridge,
		roleVerifier: roleVerifier,
		pauseGuard:   pauseGuard,
		writerLock:   writerLock,
		publisher:    publisher,
	}
}

// voteMessage never carries the voter or the rating.
type voteMessage struct {
	EventID    string `json:"event_id"`
	CategoryID string `json:"category_id"`
	Commitment string `json:"commitment"`
}

func (d *votingDomain) CreateCategory(
	ctx context.Context, req *model.CreateCategoryRequest,
) (*model.CreateCategoryResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.OrganizerRole); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if err := d.pauseGuard.Guard(ctx, entity.VotingModule); err != nil {
		return nil, err
	}

	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	category := &entity.Category{
		Base:        entity.Base{ID: uuid.NewString()},
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
		CreatedBy:   xcontext.RequestUserID(ctx),
	}

	if err := d.categoryRepo.Create(ctx, category); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create category: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateCategoryResponse{ID: category.ID}, nil
}

func (d *votingDomain) ToggleCategory(
	ctx context.Context, req *model.ToggleCategoryRequest,
) (*model.ToggleCategoryResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.OrganizerRole); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if err := d.pauseGuard.Guard(ctx, entity.VotingModule); err != nil {
		return nil, err
	}

	category, err := d.getCategory(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := d.categoryRepo.UpdateActive(ctx, category.ID, !category.Active); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot toggle category: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ToggleCategoryResponse{Active: !category.Active}, nil
}

func (d *votingDomain) GetCategory(
	ctx context.Context, req *model.GetCategoryRequest,
) (*model.GetCategoryResponse, error) {
	category, err := d.getCategory(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	return &model.GetCategoryResponse{Category: model.ConvertCategory(category)}, nil
}

func (d *votingDomain) GetCategories(
	ctx context.Context, req *model.GetCategoriesRequest,
) (*model.GetCategoriesResponse, error) {
	categories, err := d.categoryRepo.GetList(ctx, req.IncludeInactive)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get categories: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Category{}
	for i := range categories {
		result = append(result, model.ConvertCategory(&categories[i]))
	}

	return &model.GetCategoriesResponse{Categories: result}, nil
}

func (d *votingDomain) AddEventCategories(
	ctx context.Context, req *model.AddEventCategoriesRequest,
) (*model.AddEventCategoriesResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.OrganizerRole, entity.AdminRole); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if err := d.pauseGuard.Guard(ctx, entity.VotingModule, req.EventID); err != nil {
		return nil, err
	}

	if len(req.CategoryIDs) == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty categories")
	}

	ballot, err := d.getBallot(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	// Only the organizer of the event may change what its voters rate.
	if err := d.roleVerifier.VerifyOwnerOr(ctx, ballot.OrganizerID, entity.AdminRole); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if !ballot.Active || !xcontext.Now(ctx).Before(ballot.StartTime) {
		return nil, errorx.New(errorx.FailedPrecondition, "Categories can only be added before voting starts")
	}

	bound, err := d.ballotRepo.GetCategoryIDs(ctx, ballot.EventID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get ballot categories: %v", err)
		return nil, errorx.Unknown
	}

	maxCategories := xcontext.Configs(ctx).Event.MaxCategories
	if len(bound)+len(req.CategoryIDs) > maxCategories {
		return nil, errorx.New(errorx.BadRequest, "Too many categories, max is %d", maxCategories)
	}

	bindings := []entity.BallotCategory{}
	for i, id := range req.CategoryIDs {
		if slices.Contains(bound, id) || slices.Contains(req.CategoryIDs[:i], id) {
			return nil, errorx.New(errorx.BadRequest, "Duplicated category %s", id)
		}

		bindings = append(bindings, entity.BallotCategory{
			EventID:    ballot.EventID,
			CategoryID: id,
			Position:   len(bound) + i,
		})
	}

	categories, err := d.categoryRepo.GetByIDs(ctx, req.CategoryIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get categories: %v", err)
		return nil, errorx.Unknown
	}

	if len(categories) != len(req.CategoryIDs) {
		return nil, errorx.New(errorx.NotFound, "Not found category")
	}

	for _, c := range categories {
		if !c.Active {
			return nil, errorx.New(errorx.FailedPrecondition, "Category %s is inactive", c.Name)
		}
	}

	if err := d.ballotRepo.AddCategories(ctx, bindings); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot bind categories: %v", err)
		return nil, errorx.Unknown
	}

	return &model.AddEventCategoriesResponse{}, nil
}

func (d *votingDomain) Vote(ctx context.Context, req *model.VoteRequest) (*model.VoteResponse, error) {
	receipts, _, err := d.vote(ctx, "single", req.EventID, []string{req.CategoryID}, []int{req.Rating})
	if err != nil {
		return nil, err
	}

	return &model.VoteResponse{Receipt: receipts[0]}, nil
}

// BatchVote records every rating or none of them. Once the voter has rated
// all categories of the event, the survey reward is requested. A failed
// request never fails the vote.
func (d *votingDomain) BatchVote(
	ctx context.Context, req *model.BatchVoteRequest,
) (*model.BatchVoteResponse, error) {
	maxBatch := xcontext.Configs(ctx).Voting.MaxBatchSize
	if len(req.CategoryIDs) == 0 || len(req.CategoryIDs) > maxBatch {
		return nil, errorx.New(errorx.BadRequest, "Batch size must be in [1, %d]", maxBatch)
	}

	if len(req.CategoryIDs) != len(req.Ratings) {
		return nil, errorx.New(errorx.BadRequest, "Categories and ratings mismatch")
	}

	for i, id := range req.CategoryIDs {
		if slices.Contains(req.CategoryIDs[:i], id) {
			return nil, errorx.New(errorx.BadRequest, "Duplicated category %s", id)
		}
	}

	receipts, completed, err := d.vote(ctx, "batch", req.EventID, req.CategoryIDs, req.Ratings)
	if err != nil {
		return nil, err
	}

	if completed && d.bridge != nil {
		userID := xcontext.RequestUserID(ctx)
		if _, ok := d.bridge.ResolveRewardLedger(ctx, req.EventID); ok {
			if err := d.bridge.RequestSurveyReward(ctx, req.EventID, userID); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot credit survey reward of %s: %v", userID, err)
			}
		}
	}

	return &model.BatchVoteResponse{Receipts: receipts, Completed: completed}, nil
}

// vote records the ratings in one transaction and reports whether the voter
// has now rated every category bound to the event.
func (d *votingDomain) vote(
	ctx context.Context, mode, eventID string, categoryIDs []string, ratings []int,
) ([]model.VoteReceipt, bool, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, false, errorx.New(errorx.Unauthenticated, "Need to login")
	}

	for _, rating := range ratings {
		if rating < 1 || rating > 5 {
			return nil, false, errorx.New(errorx.BadRequest, "Rating must be in [1, 5]")
		}
	}

	if err := d.pauseGuard.Guard(ctx, entity.VotingModule, eventID); err != nil {
		return nil, false, err
	}

	ballot, err := d.getBallot(ctx, eventID)
	if err != nil {
		return nil, false, err
	}

	if !ballot.Active || !dateutil.Within(xcontext.Now(ctx), ballot.StartTime, ballot.EndTime) {
		return nil, false, errorx.New(errorx.FailedPrecondition, "Voting is not open")
	}

	bound, err := d.ballotRepo.GetCategoryIDs(ctx, eventID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get ballot categories: %v", err)
		return nil, false, errorx.Unknown
	}

	for _, id := range categoryIDs {
		if !slices.Contains(bound, id) {
			return nil, false, errorx.New(errorx.FailedPrecondition, "Category %s is not open for this event", id)
		}
	}

	ctx, unlock := d.writerLock.Lock(ctx, common.LockKeyVoter(eventID, userID))
	defer unlock()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	receipts := []model.VoteReceipt{}
	for i, categoryID := range categoryIDs {
		receipt, err := d.recordVote(ctx, eventID, userID, categoryID, ratings[i])
		if err != nil {
			return nil, false, err
		}

		receipts = append(receipts, *receipt)
	}

	firstVote, err := d.ballotRepo.CreateVoterIfNotExists(ctx, eventID, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create voter: %v", err)
		return nil, false, errorx.Unknown
	}

	var newParticipants uint64
	if firstVote {
		newParticipants = 1
	}

	if err := d.ballotRepo.IncreaseVotes(ctx, eventID, newParticipants, uint64(len(receipts))); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increase ballot votes: %v", err)
		return nil, false, errorx.Unknown
	}

	voted, err := d.ballotRepo.CountVoteRecords(ctx, eventID, userID, bound)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count vote records: %v", err)
		return nil, false, errorx.Unknown
	}

	xcontext.AfterCommit(ctx, func() {
		for range receipts {
			common.IncCounter(common.VoteTotal, mode)
		}
	})

	if err := xcontext.CommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, false, errorx.Unknown
	}

	return receipts, len(bound) > 0 && int(voted) == len(bound), nil
}

func (d *votingDomain) recordVote(
	ctx context.Context, eventID, userID, categoryID string, rating int,
) (*model.VoteReceipt, error) {
	voted, err := d.ballotRepo.HasVoteRecord(ctx, eventID, userID, categoryID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check vote record: %v", err)
		return nil, errorx.Unknown
	}

	if voted {
		return nil, errorx.New(errorx.AlreadyExists, "Already voted category %s", categoryID)
	}

	if err := d.categoryRepo.IncreaseRating(ctx, categoryID, rating); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.FailedPrecondition, "Category %s is inactive", categoryID)
		}

		xcontext.Logger(ctx).Errorf("Cannot increase rating: %v", err)
		return nil, errorx.Unknown
	}

	now := xcontext.Now(ctx)
	err = d.ballotRepo.CreateVoteRecord(ctx, &entity.VoteRecord{
		EventID:    eventID,
		UserID:     userID,
		CategoryID: categoryID,
		CreatedAt:  now,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create vote record: %v", err)
		return nil, errorx.Unknown
	}

	salt, err := crypto.GenerateSalt(saltSize)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate salt: %v", err)
		return nil, errorx.Unknown
	}

	commitment := crypto.HashFields(
		userID, eventID, categoryID, strconv.Itoa(rating), salt, strconv.FormatInt(now.UnixNano(), 10))

	err = d.ballotRepo.CreateCommitment(ctx, &entity.VoteCommitment{
		Commitment: commitment,
		EventID:    eventID,
		CategoryID: categoryID,
		CreatedAt:  now,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create commitment: %v", err)
		return nil, errorx.Unknown
	}

	publishAfterCommit(ctx, d.publisher, xcontext.Configs(ctx).Kafka.VoteTopic, eventID, voteMessage{
		EventID:    eventID,
		CategoryID: categoryID,
		Commitment: commitment,
	})

	return &model.VoteReceipt{CategoryID: categoryID, Commitment: commitment, Salt: salt}, nil
}

func (d *votingDomain) GetCategoryResults(
	ctx context.Context, req *model.GetCategoryResultsRequest,
) (*model.GetCategoryResultsResponse, error) {
	if _, err := d.getBallot(ctx, req.EventID); err != nil {
		return nil, err
	}

	bound, err := d.ballotRepo.GetCategoryIDs(ctx, req.EventID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get ballot categories: %v", err)
		return nil, errorx.Unknown
	}

	categories, err := d.categoryRepo.GetByIDs(ctx, bound)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get categories: %v", err)
		return nil, errorx.Unknown
	}

	categoryByID := map[string]entity.Category{}
	for _, c := range categories {
		categoryByID[c.ID] = c
	}

	precision := xcontext.Configs(ctx).Voting.RatingPrecision
	results := []model.CategoryResult{}
	for _, id := range bound {
		c, ok := categoryByID[id]
		if !ok {
			continue
		}

		results = append(results, model.CategoryResult{
			CategoryID:    c.ID,
			Name:          c.Name,
			AverageRating: averageRating(c, precision),
			TotalVotes:    c.TotalVotes,
			Distribution:  c.Distribution(),
		})
	}

	return &model.GetCategoryResultsResponse{Results: results}, nil
}

func (d *votingDomain) GetRatingDistribution(
	ctx context.Context, req *model.GetRatingDistributionRequest,
) (*model.GetRatingDistributionResponse, error) {
	category, err := d.getCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	return &model.GetRatingDistributionResponse{
		Distribution: category.Distribution(),
		TotalVotes:   category.TotalVotes,
	}, nil
}

func (d *votingDomain) GetAverageRating(
	ctx context.Context, req *model.GetAverageRatingRequest,
) (*model.GetAverageRatingResponse, error) {
	category, err := d.getCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	if category.TotalVotes == 0 {
		return nil, errorx.New(errorx.FailedPrecondition, "Category has no vote")
	}

	precision := xcontext.Configs(ctx).Voting.RatingPrecision
	return &model.GetAverageRatingResponse{
		AverageRating: averageRating(*category, precision),
		Precision:     precision,
	}, nil
}

func (d *votingDomain) HasVoted(ctx context.Context, req *model.HasVotedRequest) (*model.HasVotedResponse, error) {
	voted, err := d.ballotRepo.HasVoter(ctx, req.EventID, requestUserOr(ctx, req.UserID))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check voter: %v", err)
		return nil, errorx.Unknown
	}

	return &model.HasVotedResponse{Voted: voted}, nil
}

func (d *votingDomain) HasVotedCategory(
	ctx context.Context, req *model.HasVotedCategoryRequest,
) (*model.HasVotedCategoryResponse, error) {
	voted, err := d.ballotRepo.HasVoteRecord(ctx, req.EventID, requestUserOr(ctx, req.UserID), req.CategoryID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check vote record: %v", err)
		return nil, errorx.Unknown
	}

	return &model.HasVotedCategoryResponse{Voted: voted}, nil
}

func (d *votingDomain) getBallot(ctx context.Context, eventID string) (*entity.Ballot, error) {
	ballot, err := d.ballotRepo.GetByEventID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found event")
		}

		xcontext.Logger(ctx).Errorf("Cannot get ballot: %v", err)
		return nil, errorx.Unknown
	}

	return ballot, nil
}

func (d *votingDomain) getCategory(ctx context.Context, id string) (*entity.Category, error) {
	category, err := d.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found category")
		}

		xcontext.Logger(ctx).Errorf("Cannot get category: %v", err)
		return nil, errorx.Unknown
	}

	return category, nil
}

// averageRating returns the weighted mean rating multiplied by precision, or
// zero for a category without votes.
func averageRating(c entity.Category, precision uint64) uint64 {
	if c.TotalVotes == 0 {
		return 0
	}

	var sum uint64
	for i, count := range c.Distribution() {
		sum += uint64(i+1) * count
	}

	return sum * precision / c.TotalVotes
}
