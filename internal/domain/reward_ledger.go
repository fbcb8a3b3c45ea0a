package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/questx-lab/eventreward/internal/common"
	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/internal/model"
	"github.com/questx-lab/eventreward/internal/repository"
	"github.com/questx-lab/eventreward/pkg/errorx"
	"github.com/questx-lab/eventreward/pkg/pubsub"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"github.com/questx-lab/eventreward/pkg/xredis"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const rewardLedgerGuard = "reward_ledger"

// RewardLedgerDomain is a per-event claim-once balance store. Balances only
// change through credits and debits, no operation moves balance between two
// accounts.
type RewardLedgerDomain interface {
	CreateLedger(context.Context, *model.CreateLedgerRequest) (*model.CreateLedgerResponse, error)
	CreditAttendance(context.Context, *model.CreditAttendanceRequest) (*model.CreditAttendanceResponse, error)
	CreditSurvey(context.Context, *model.CreditSurveyRequest) (*model.CreditSurveyResponse, error)
	Debit(context.Context, *model.DebitRequest) (*model.DebitResponse, error)
	GetProgress(context.Context, *model.GetProgressRequest) (*model.GetProgressResponse, error)
	GetBalance(context.Context, *model.GetBalanceRequest) (*model.GetBalanceResponse, error)
	GetEntries(context.Context, *model.GetLedgerEntriesRequest) (*model.GetLedgerEntriesResponse, error)
	GetLeaderboard(context.Context, *model.GetLedgerLeaderboardRequest) (*model.GetLedgerLeaderboardResponse, error)
}

type rewardLedgerDomain struct {
	ledgerRepo   repository.RewardLedgerRepository
	roleVerifier *common.RoleVerifier
	pauseGuard   *common.PauseGuard
	writerLock   *common.WriterLock
	idGenerator  *snowflake.Node
	redisClient  xredis.Client
	publisher    pubsub.Publisher
}

func NewRewardLedgerDomain(
	ledgerRepo repository.RewardLedgerRepository,
	roleVerifier *common.RoleVerifier,
	pauseGuard *common.PauseGuard,
	writerLock *common.WriterLock,
	idGenerator *snowflake.Node,
	redisClient xredis.Client,
	publisher pubsub.Publisher,
) *rewardLedgerDomain {
	return &rewardLedgerDomain{
		ledgerRepo:   ledgerRepo,
		roleVerifier: roleVerifier,
		pauseGuard:   pauseGuard,
		writerLock:   writerLock,
		idGenerator:  idGenerator,
		redisClient:  redisClient,
		publisher:    publisher,
	}
}

type ledgerMessage struct {
	LedgerID string `json:"ledger_id"`
	UserID   string `json:"user_id"`
	EntryID  int64  `json:"entry_id"`
	Kind     string `json:"kind"`
	Amount   uint64 `json:"amount"`
	Balance  uint64 `json:"balance"`
	Reason   string `json:"reason,omitempty"`
}

func (d *rewardLedgerDomain) CreateLedger(
	ctx context.Context, req *model.CreateLedgerRequest,
) (*model.CreateLedgerResponse, error) {
	if req.EventID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty event")
	}

	ctx, err := xcontext.WithCallGuard(ctx, rewardLedgerGuard)
	if err != nil {
		return nil, err
	}

	if err := d.roleVerifier.Verify(ctx, entity.OrganizerRole, entity.AdminRole); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if err := d.pauseGuard.Guard(ctx, entity.RewardLedgerModule); err != nil {
		return nil, err
	}

	ledger := &entity.RewardLedger{
		Base:             entity.Base{ID: uuid.NewString()},
		EventID:          req.EventID,
		AttendanceReward: req.AttendanceReward,
		SurveyReward:     req.SurveyReward,
		CreatedBy:        xcontext.RequestUserID(ctx),
	}

	if err := d.ledgerRepo.Create(ctx, ledger); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create reward ledger: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateLedgerResponse{ID: ledger.ID}, nil
}

func (d *rewardLedgerDomain) CreditAttendance(
	ctx context.Context, req *model.CreditAttendanceRequest,
) (*model.CreditAttendanceResponse, error) {
	balance, err := d.credit(ctx, entity.AttendanceCredit, req.LedgerID, req.UserID)
	if err != nil {
		return nil, err
	}

	return &model.CreditAttendanceResponse{Balance: balance}, nil
}

func (d *rewardLedgerDomain) CreditSurvey(
	ctx context.Context, req *model.CreditSurveyRequest,
) (*model.CreditSurveyResponse, error) {
	balance, err := d.credit(ctx, entity.SurveyCredit, req.LedgerID, req.UserID)
	if err != nil {
		return nil, err
	}

	return &model.CreditSurveyResponse{Balance: balance}, nil
}

// credit flips the claim-once flag of kind and adds the configured reward to
// the balance. It returns the new balance.
func (d *rewardLedgerDomain) credit(
	ctx context.Context, kind entity.LedgerEntryKind, ledgerID, userID string,
) (uint64, error) {
	if userID == "" {
		return 0, errorx.New(errorx.BadRequest, "Not allow a null account")
	}

	ctx, err := xcontext.WithCallGuard(ctx, rewardLedgerGuard)
	if err != nil {
		return 0, err
	}

	if err := d.roleVerifier.Verify(ctx, entity.MinterRole); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return 0, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if err := d.pauseGuard.Guard(ctx, entity.RewardLedgerModule, ledgerID); err != nil {
		return 0, err
	}

	ledger, err := d.ledgerRepo.GetByID(ctx, ledgerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errorx.New(errorx.NotFound, "Not found reward ledger")
		}

		xcontext.Logger(ctx).Errorf("Cannot get reward ledger: %v", err)
		return 0, errorx.Unknown
	}

	ctx, unlock := d.writerLock.Lock(ctx, common.LockKeyLedgerAccount(ledgerID, userID))
	defer unlock()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.ledgerRepo.CreateAccountIfNotExists(ctx, ledgerID, userID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create ledger account: %v", err)
		return 0, errorx.Unknown
	}

	account, err := d.ledgerRepo.GetAccount(ctx, ledgerID, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get ledger account: %v", err)
		return 0, errorx.Unknown
	}

	var amount uint64
	switch kind {
	case entity.AttendanceCredit:
		if account.AttendanceClaimed {
			return 0, errorx.New(errorx.AlreadyExists, "Attendance reward has already been claimed")
		}

		amount = ledger.AttendanceReward
		err = d.ledgerRepo.ClaimAttendance(ctx, ledgerID, userID, amount)

	case entity.SurveyCredit:
		if !account.AttendanceClaimed {
			return 0, errorx.New(errorx.FailedPrecondition, "Attendance reward has not been claimed yet")
		}

		if account.SurveyClaimed {
			return 0, errorx.New(errorx.AlreadyExists, "Survey reward has already been claimed")
		}

		amount = ledger.SurveyReward
		err = d.ledgerRepo.ClaimSurvey(ctx, ledgerID, userID, amount)

	default:
		return 0, errorx.New(errorx.BadRequest, "Invalid credit kind %s", kind)
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errorx.New(errorx.AlreadyExists, "Reward has already been claimed")
		}

		xcontext.Logger(ctx).Errorf("Cannot credit %s: %v", kind, err)
		return 0, errorx.Unknown
	}

	entry, err := d.createEntry(ctx, ledgerID, userID, kind, amount, "")
	if err != nil {
		return 0, err
	}

	balance := account.Balance + amount
	d.afterCommit(ctx, kind, entry, balance)
	if err := xcontext.CommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return 0, errorx.Unknown
	}

	return balance, nil
}

func (d *rewardLedgerDomain) Debit(
	ctx context.Context, req *model.DebitRequest,
) (*model.DebitResponse, error) {
	if req.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow a null account")
	}

	if req.Amount == 0 {
		return nil, errorx.New(errorx.BadRequest, "Amount must be positive")
	}

	if req.Reason == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty reason")
	}

	ctx, err := xcontext.WithCallGuard(ctx, rewardLedgerGuard)
	if err != nil {
		return nil, err
	}

	if err := d.roleVerifier.Verify(ctx, entity.BurnerRole); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if err := d.pauseGuard.Guard(ctx, entity.RewardLedgerModule, req.LedgerID); err != nil {
		return nil, err
	}

	if _, err := d.ledgerRepo.GetByID(ctx, req.LedgerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found reward ledger")
		}

		xcontext.Logger(ctx).Errorf("Cannot get reward ledger: %v", err)
		return nil, errorx.Unknown
	}

	ctx, unlock := d.writerLock.Lock(ctx, common.LockKeyLedgerAccount(req.LedgerID, req.UserID))
	defer unlock()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	account, err := d.ledgerRepo.GetAccount(ctx, req.LedgerID, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.ResourceExhausted, "Insufficient balance")
		}

		xcontext.Logger(ctx).Errorf("Cannot get ledger account: %v", err)
		return nil, errorx.Unknown
	}

	if account.Balance < req.Amount {
		return nil, errorx.New(errorx.ResourceExhausted, "Insufficient balance")
	}

	if err := d.ledgerRepo.DecreaseBalance(ctx, req.LedgerID, req.UserID, req.Amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.ResourceExhausted, "Insufficient balance")
		}

		xcontext.Logger(ctx).Errorf("Cannot decrease balance: %v", err)
		return nil, errorx.Unknown
	}

	entry, err := d.createEntry(ctx, req.LedgerID, req.UserID, entity.Debit, req.Amount, req.Reason)
	if err != nil {
		return nil, err
	}

	balance := account.Balance - req.Amount
	d.afterCommit(ctx, entity.Debit, entry, balance)
	if err := xcontext.CommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DebitResponse{Balance: balance}, nil
}

func (d *rewardLedgerDomain) createEntry(
	ctx context.Context, ledgerID, userID string, kind entity.LedgerEntryKind, amount uint64, reason string,
) (*entity.LedgerEntry, error) {
	entry := &entity.LedgerEntry{
		SnowFlakeBase: entity.SnowFlakeBase{ID: d.idGenerator.Generate().Int64()},
		LedgerID:      ledgerID,
		UserID:        userID,
		Kind:          kind,
		Amount:        amount,
		Reason:        reason,
		OperatorID:    xcontext.RequestUserID(ctx),
	}

	if err := d.ledgerRepo.CreateEntry(ctx, entry); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create ledger entry: %v", err)
		return nil, errorx.Unknown
	}

	return entry, nil
}

func (d *rewardLedgerDomain) afterCommit(
	ctx context.Context, kind entity.LedgerEntryKind, entry *entity.LedgerEntry, balance uint64,
) {
	publishAfterCommit(ctx, d.publisher, xcontext.Configs(ctx).Kafka.LedgerTopic, entry.LedgerID, ledgerMessage{
		LedgerID: entry.LedgerID,
		UserID:   entry.UserID,
		EntryID:  entry.ID,
		Kind:     string(kind),
		Amount:   entry.Amount,
		Balance:  balance,
		Reason:   entry.Reason,
	})

	xcontext.AfterCommit(ctx, func() {
		common.IncCounter(common.LedgerOperationTotal, string(kind))

		if kind == entity.Debit || entry.Amount == 0 || d.redisClient == nil {
			return
		}

		// A missing board is seeded from the database on the next read.
		key := common.RedisKeyLedgerEarned(entry.LedgerID)
		exists, err := d.redisClient.Exist(ctx, key)
		if err != nil || !exists {
			return
		}

		if err := d.redisClient.ZIncrBy(ctx, key, int64(entry.Amount), entry.UserID); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot update ledger leaderboard, drop it: %v", err)

			// A board missing this credit must not be served.
			if err := d.redisClient.Del(ctx, key); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot drop ledger leaderboard: %v", err)
			}
		}
	})
}

func (d *rewardLedgerDomain) GetProgress(
	ctx context.Context, req *model.GetProgressRequest,
) (*model.GetProgressResponse, error) {
	ledger, err := d.ledgerRepo.GetByID(ctx, req.LedgerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found reward ledger")
		}

		xcontext.Logger(ctx).Errorf("Cannot get reward ledger: %v", err)
		return nil, errorx.Unknown
	}

	account, err := d.getAccount(ctx, req.LedgerID, requestUserOr(ctx, req.UserID))
	if err != nil {
		return nil, err
	}

	return &model.GetProgressResponse{
		AttendanceClaimed: account.AttendanceClaimed,
		SurveyClaimed:     account.SurveyClaimed,
		Balance:           account.Balance,
		MaxObtainable:     ledger.AttendanceReward + ledger.SurveyReward,
	}, nil
}

func (d *rewardLedgerDomain) GetBalance(
	ctx context.Context, req *model.GetBalanceRequest,
) (*model.GetBalanceResponse, error) {
	if _, err := d.ledgerRepo.GetByID(ctx, req.LedgerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found reward ledger")
		}

		xcontext.Logger(ctx).Errorf("Cannot get reward ledger: %v", err)
		return nil, errorx.Unknown
	}

	account, err := d.getAccount(ctx, req.LedgerID, requestUserOr(ctx, req.UserID))
	if err != nil {
		return nil, err
	}

	return &model.GetBalanceResponse{Balance: account.Balance}, nil
}

// getAccount returns an empty account if the user has never been credited.
func (d *rewardLedgerDomain) getAccount(ctx context.Context, ledgerID, userID string) (*entity.LedgerAccount, error) {
	account, err := d.ledgerRepo.GetAccount(ctx, ledgerID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.LedgerAccount{LedgerID: ledgerID, UserID: userID}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get ledger account: %v", err)
		return nil, errorx.Unknown
	}

	return account, nil
}

func (d *rewardLedgerDomain) GetEntries(
	ctx context.Context, req *model.GetLedgerEntriesRequest,
) (*model.GetLedgerEntriesResponse, error) {
	offset, limit, err := paginate(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	entries, err := d.ledgerRepo.GetEntries(ctx, req.LedgerID, requestUserOr(ctx, req.UserID), offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get ledger entries: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.LedgerEntry{}
	for i := range entries {
		result = append(result, model.ConvertLedgerEntry(&entries[i]))
	}

	return &model.GetLedgerEntriesResponse{Entries: result}, nil
}

func (d *rewardLedgerDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLedgerLeaderboardRequest,
) (*model.GetLedgerLeaderboardResponse, error) {
	_, limit, err := paginate(ctx, 0, req.Limit)
	if err != nil {
		return nil, err
	}

	key := common.RedisKeyLedgerEarned(req.LedgerID)
	exists := false
	if d.redisClient != nil {
		exists, err = d.redisClient.Exist(ctx, key)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot check leaderboard key: %v", err)
		}
	}

	result := []model.LeaderboardEntry{}
	if exists {
		members, err := d.redisClient.ZRevRangeWithScores(ctx, key, 0, limit)
		if err == nil {
			for _, z := range members {
				userID, _ := z.Member.(string)
				result = append(result, model.LeaderboardEntry{UserID: userID, Earned: uint64(z.Score)})
			}

			return &model.GetLedgerLeaderboardResponse{Entries: result}, nil
		}

		xcontext.Logger(ctx).Warnf("Cannot get leaderboard from redis: %v", err)
	}

	accounts, err := d.ledgerRepo.GetTopEarners(ctx, req.LedgerID, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get top earners: %v", err)
		return nil, errorx.Unknown
	}

	zs := []redis.Z{}
	for _, a := range accounts {
		result = append(result, model.LeaderboardEntry{UserID: a.UserID, Earned: a.TotalEarned})
		zs = append(zs, redis.Z{Member: a.UserID, Score: float64(a.TotalEarned)})
	}

	// Only a complete board may seed the cache.
	if d.redisClient != nil && !exists && len(zs) > 0 && len(zs) < limit {
		if err := d.redisClient.ZAdd(ctx, key, zs...); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot seed leaderboard: %v", err)
		}
	}

	return &model.GetLedgerLeaderboardResponse{Entries: result}, nil
}
