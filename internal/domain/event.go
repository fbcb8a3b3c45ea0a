package domain

import (
	"context"
	"database/sql"
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
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"gorm.io/gorm"
)

type EventDomain interface {
	SurveyRewardBridge

	Create(context.Context, *model.CreateEventRequest) (*model.CreateEventResponse, error)
	Update(context.Context, *model.UpdateEventRequest) (*model.UpdateEventResponse, error)
	Activate(context.Context, *model.ActivateEventRequest) (*model.ActivateEventResponse, error)
	OpenVoting(context.Context, *model.OpenVotingRequest) (*model.OpenVotingResponse, error)
	CloseVoting(context.Context, *model.CloseVotingRequest) (*model.CloseVotingResponse, error)
	Complete(context.Context, *model.CompleteEventRequest) (*model.CompleteEventResponse, error)
	Cancel(context.Context, *model.CancelEventRequest) (*model.CancelEventResponse, error)

	Register(context.Context, *model.RegisterRequest) (*model.RegisterResponse, error)
	Unregister(context.Context, *model.UnregisterRequest) (*model.UnregisterResponse, error)
	MarkAttendance(context.Context, *model.MarkAttendanceRequest) (*model.MarkAttendanceResponse, error)
	BatchMarkAttendance(context.Context, *model.BatchMarkAttendanceRequest) (*model.BatchMarkAttendanceResponse, error)

	Get(context.Context, *model.GetEventRequest) (*model.GetEventResponse, error)
	IsRegistered(context.Context, *model.IsRegisteredRequest) (*model.IsRegisteredResponse, error)
	HasAttended(context.Context, *model.HasAttendedRequest) (*model.HasAttendedResponse, error)
	GetActive(context.Context, *model.GetActiveEventsRequest) (*model.GetActiveEventsResponse, error)
	GetUpcoming(context.Context, *model.GetUpcomingEventsRequest) (*model.GetUpcomingEventsResponse, error)
	CanVote(context.Context, *model.CanVoteRequest) (*model.CanVoteResponse, error)
	GetParticipants(context.Context, *model.GetParticipantsRequest) (*model.GetParticipantsResponse, error)
}

type eventDomain struct {
	eventRepo       repository.EventRepository
	participantRepo repository.ParticipantRepository
	ballotRepo      repository.BallotRepository
	categoryRepo    repository.CategoryRepository
	ledgerDomain    RewardLedgerDomain
	roleVerifier    *common.RoleVerifier
	pauseGuard      *common.PauseGuard
	writerLock      *common.WriterLock
}

func NewEventDomain(
	eventRepo repository.EventRepository,
	participantRepo repository.ParticipantRepository,
	ballotRepo repository.BallotRepository,
	categoryRepo repository.CategoryRepository,
	ledgerDomain RewardLedgerDomain,
	roleVerifier *common.RoleVerifier,
	pauseGuard *common.PauseGuard,
	writerLock *common.WriterLock,
) *eventDomain {
	return &eventDomain{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		ballotRepo:      ballotRepo,
		categoryRepo:    categoryRepo,
		ledgerDomain:    ledgerDomain,
		roleVerifier:    roleVerifier,
		pauseGuard:      pauseGuard,
		writerLock:      writerLock,
	}
}

func (d *eventDomain) Create(
	ctx context.Context, req *model.CreateEventRequest,
) (*model.CreateEventResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.OrganizerRole); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if err := d.pauseGuard.Guard(ctx, entity.EventModule); err != nil {
		return nil, err
	}

	if err := d.validateCreate(ctx, req); err != nil {
		return nil, err
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

	now := xcontext.Now(ctx)
	event := &entity.Event{
		Base:                 entity.Base{ID: uuid.NewString(), CreatedAt: now},
		Name:                 req.Name,
		Description:          req.Description,
		Location:             req.Location,
		OrganizerID:          xcontext.RequestUserID(ctx),
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		VotingStart:          req.VotingStart,
		VotingEnd:            req.VotingEnd,
		Capacity:             req.Capacity,
		RequiresRegistration: req.RequiresRegistration,
		Status:               entity.EventCreated,
	}
	event.Fingerprint = crypto.HashFields(
		event.ID, event.Name, event.OrganizerID, strconv.FormatInt(now.UnixNano(), 10))

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	ledger, err := d.ledgerDomain.CreateLedger(
		asServiceAccount(ctx, xcontext.Configs(ctx).ServiceAccounts.EventManager),
		&model.CreateLedgerRequest{
			EventID:          event.ID,
			AttendanceReward: req.AttendanceReward,
			SurveyReward:     req.SurveyReward,
		},
	)
	if err != nil {
		return nil, err
	}
	event.RewardLedgerID = ledger.ID

	if err := d.eventRepo.Create(ctx, event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create event: %v", err)
		return nil, errorx.Unknown
	}

	err = d.ballotRepo.Create(ctx, &entity.Ballot{
		EventID:     event.ID,
		OrganizerID: event.OrganizerID,
		StartTime:   event.VotingStart,
		EndTime:     event.VotingEnd,
		Active:      true,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create ballot: %v", err)
		return nil, errorx.Unknown
	}

	if len(req.CategoryIDs) > 0 {
		bindings := []entity.BallotCategory{}
		for i, id := range req.CategoryIDs {
			bindings = append(bindings, entity.BallotCategory{EventID: event.ID, CategoryID: id, Position: i})
		}

		if err := d.ballotRepo.AddCategories(ctx, bindings); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot bind categories to ballot: %v", err)
			return nil, errorx.Unknown
		}
	}

	if err := xcontext.CommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateEventResponse{
		ID:             event.ID,
		RewardLedgerID: event.RewardLedgerID,
		Fingerprint:    event.Fingerprint,
	}, nil
}

func (d *eventDomain) validateCreate(ctx context.Context, req *model.CreateEventRequest) error {
	cfg := xcontext.Configs(ctx).Event

	if req.Name == "" {
		return errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	if !req.StartTime.After(xcontext.Now(ctx)) {
		return errorx.New(errorx.BadRequest, "Start time must be in the future")
	}

	if !req.EndTime.After(req.StartTime) {
		return errorx.New(errorx.BadRequest, "End time must be after start time")
	}

	if dur := req.EndTime.Sub(req.StartTime); dur < cfg.MinDuration || dur > cfg.MaxDuration {
		return errorx.New(errorx.BadRequest, "Event duration must be in [%s, %s]", cfg.MinDuration, cfg.MaxDuration)
	}

	if req.VotingStart.Before(req.StartTime) {
		return errorx.New(errorx.BadRequest, "Voting must not start before the event")
	}

	if !req.VotingEnd.After(req.VotingStart) {
		return errorx.New(errorx.BadRequest, "Voting end must be after voting start")
	}

	if dur := req.VotingEnd.Sub(req.VotingStart); dur < cfg.MinVotingDuration || dur > cfg.MaxVotingDuration {
		return errorx.New(errorx.BadRequest,
			"Voting duration must be in [%s, %s]", cfg.MinVotingDuration, cfg.MaxVotingDuration)
	}

	if req.Capacity == 0 {
		return errorx.New(errorx.BadRequest, "Capacity must be positive")
	}

	if len(req.CategoryIDs) > cfg.MaxCategories {
		return errorx.New(errorx.BadRequest, "Too many categories, max is %d", cfg.MaxCategories)
	}

	seen := map[string]bool{}
	for _, id := range req.CategoryIDs {
		if seen[id] {
			return errorx.New(errorx.BadRequest, "Duplicated category %s", id)
		}
		seen[id] = true
	}

	return nil
}

func (d *eventDomain) Update(
	ctx context.Context, req *model.UpdateEventRequest,
) (*model.UpdateEventResponse, error) {
	event, err := d.getEvent(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := d.verifyEventOperator(ctx, event); err != nil {
		return nil, err
	}

	if err := d.pauseGuard.Guard(ctx, entity.EventModule, event.ID); err != nil {
		return nil, err
	}

	ctx, unlock := d.writerLock.Lock(ctx, common.LockKeyEvent(event.ID))
	defer unlock()

	// Reload under the lock, counters may have moved.
	event, err = d.getEvent(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if event.Status != entity.EventCreated {
		return nil, errorx.New(errorx.FailedPrecondition, "Only a created event can be updated")
	}

	changes := map[string]any{}
	if req.Name != "" {
		changes["name"] = req.Name
	}

	if req.Description != "" {
		changes["description"] = req.Description
	}

	if req.Location != "" {
		changes["location"] = req.Location
	}

	if req.Capacity != 0 {
		if req.Capacity < event.ParticipantCount {
			return nil, errorx.New(errorx.BadRequest,
				"Capacity must not be less than the %d registered accounts", event.ParticipantCount)
		}

		changes["capacity"] = req.Capacity
	}

	if len(changes) == 0 {
		return &model.UpdateEventResponse{}, nil
	}

	if err := d.eventRepo.UpdateByID(ctx, event.ID, changes); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update event: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateEventResponse{}, nil
}

func (d *eventDomain) Activate(
	ctx context.Context, req *model.ActivateEventRequest,
) (*model.ActivateEventResponse, error) {
	err := d.transition(ctx, req.EventID, entity.EventCreated, entity.EventActive,
		func(ctx context.Context, event *entity.Event) error {
			if xcontext.Now(ctx).Before(event.StartTime) {
				return errorx.New(errorx.FailedPrecondition, "Event has not started yet")
			}

			return nil
		})
	if err != nil {
		return nil, err
	}

	return &model.ActivateEventResponse{}, nil
}

func (d *eventDomain) OpenVoting(
	ctx context.Context, req *model.OpenVotingRequest,
) (*model.OpenVotingResponse, error) {
	err := d.transition(ctx, req.EventID, entity.EventActive, entity.EventVotingOpen,
		func(ctx context.Context, event *entity.Event) error {
			if !dateutil.Within(xcontext.Now(ctx), event.VotingStart, event.VotingEnd) {
				return errorx.New(errorx.FailedPrecondition, "Not in the voting window")
			}

			return nil
		})
	if err != nil {
		return nil, err
	}

	return &model.OpenVotingResponse{}, nil
}

func (d *eventDomain) CloseVoting(
	ctx context.Context, req *model.CloseVotingRequest,
) (*model.CloseVotingResponse, error) {
	err := d.transition(ctx, req.EventID, entity.EventVotingOpen, entity.EventVotingClosed,
		func(ctx context.Context, event *entity.Event) error {
			if !xcontext.Now(ctx).Before(event.VotingEnd) {
				return nil
			}

			// Closing early is an admin override.
			if err := d.roleVerifier.Verify(ctx, entity.AdminRole); err != nil {
				xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
				return errorx.New(errorx.FailedPrecondition, "Voting window has not ended yet")
			}

			return nil
		})
	if err != nil {
		return nil, err
	}

	return &model.CloseVotingResponse{}, nil
}

func (d *eventDomain) Complete(
	ctx context.Context, req *model.CompleteEventRequest,
) (*model.CompleteEventResponse, error) {
	err := d.transition(ctx, req.EventID, entity.EventVotingClosed, entity.EventCompleted, nil)
	if err != nil {
		return nil, err
	}

	return &model.CompleteEventResponse{}, nil
}

func (d *eventDomain) Cancel(
	ctx context.Context, req *model.CancelEventRequest,
) (*model.CancelEventResponse, error) {
	event, err := d.getEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	from := event.Status
	if from != entity.EventCreated && from != entity.EventActive {
		return nil, errorx.New(errorx.FailedPrecondition, "Cannot cancel a %s event", from)
	}

	if err := d.transition(ctx, req.EventID, from, entity.EventCancelled, nil); err != nil {
		return nil, err
	}

	return &model.CancelEventResponse{}, nil
}

// transition moves the event from one status to the next after check passes.
// Leaving voting_open or entering cancelled closes the ballot in the same
// transaction.
func (d *eventDomain) transition(
	ctx context.Context,
	eventID string,
	from, to entity.EventStatus,
	check func(context.Context, *entity.Event) error,
) error {
	event, err := d.getEvent(ctx, eventID)
	if err != nil {
		return err
	}

	if err := d.verifyEventOperator(ctx, event); err != nil {
		return err
	}

	if err := d.pauseGuard.Guard(ctx, entity.EventModule, event.ID); err != nil {
		return err
	}

	ctx, unlock := d.writerLock.Lock(ctx, common.LockKeyEvent(event.ID))
	defer unlock()

	event, err = d.getEvent(ctx, eventID)
	if err != nil {
		return err
	}

	if event.Status != from {
		return errorx.New(errorx.FailedPrecondition, "Event is %s, not %s", event.Status, from)
	}

	if check != nil {
		if err := check(ctx, event); err != nil {
			return err
		}
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.eventRepo.UpdateStatus(ctx, event.ID, from, to); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.FailedPrecondition, "Event status has changed")
		}

		xcontext.Logger(ctx).Errorf("Cannot update event status: %v", err)
		return errorx.Unknown
	}

	if to == entity.EventVotingClosed || to == entity.EventCancelled {
		if err := d.ballotRepo.UpdateActive(ctx, event.ID, false); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot deactivate ballot: %v", err)
			return errorx.Unknown
		}
	}

	if err := xcontext.CommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *eventDomain) Register(
	ctx context.Context, req *model.RegisterRequest,
) (*model.RegisterResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Need to login")
	}

	event, err := d.getEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	if err := d.pauseGuard.Guard(ctx, entity.EventModule, event.ID); err != nil {
		return nil, err
	}

	if !event.RequiresRegistration {
		return nil, errorx.New(errorx.FailedPrecondition, "Event does not require registration")
	}

	ctx, unlock := d.writerLock.Lock(ctx, common.LockKeyEvent(event.ID))
	defer unlock()

	event, err = d.getEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	if event.Status != entity.EventCreated && event.Status != entity.EventActive {
		return nil, errorx.New(errorx.FailedPrecondition, "Registration is closed")
	}

	now := xcontext.Now(ctx)
	if !now.Before(event.StartTime) {
		return nil, errorx.New(errorx.FailedPrecondition, "Event has already started")
	}

	_, err = d.participantRepo.Get(ctx, event.ID, userID)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "Already registered")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get participant: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.eventRepo.IncreaseRegistered(ctx, event.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.ResourceExhausted, "Event is full")
		}

		xcontext.Logger(ctx).Errorf("Cannot increase registered count: %v", err)
		return nil, errorx.Unknown
	}

	err = d.participantRepo.Create(ctx, &entity.EventParticipant{
		EventID:      event.ID,
		UserID:       userID,
		Registered:   true,
		RegisteredAt: sql.NullTime{Valid: true, Time: now},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create participant: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.CommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RegisterResponse{}, nil
}

func (d *eventDomain) Unregister(
	ctx context.Context, req *model.UnregisterRequest,
) (*model.UnregisterResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Need to login")
	}

	event, err := d.getEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	if err := d.pauseGuard.Guard(ctx, entity.EventModule, event.ID); err != nil {
		return nil, err
	}

	ctx, unlock := d.writerLock.Lock(ctx, common.LockKeyEvent(event.ID))
	defer unlock()

	event, err = d.getEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	if event.Status != entity.EventCreated {
		return nil, errorx.New(errorx.FailedPrecondition, "Unregistration is closed")
	}

	participant, err := d.participantRepo.Get(ctx, event.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.FailedPrecondition, "Not registered")
		}

		xcontext.Logger(ctx).Errorf("Cannot get participant: %v", err)
		return nil, errorx.Unknown
	}

	if !participant.Registered {
		return nil, errorx.New(errorx.FailedPrecondition, "Not registered")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.participantRepo.Delete(ctx, event.ID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.FailedPrecondition, "Cannot unregister an attended account")
		}

		xcontext.Logger(ctx).Errorf("Cannot delete participant: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.eventRepo.DecreaseRegistered(ctx, event.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decrease registered count: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.CommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UnregisterResponse{}, nil
}

func (d *eventDomain) MarkAttendance(
	ctx context.Context, req *model.MarkAttendanceRequest,
) (*model.MarkAttendanceResponse, error) {
	ctx, event, unlock, err := d.prepareAttendance(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := d.markOne(ctx, event, req.UserID); err != nil {
		return nil, err
	}

	common.IncCounter(common.AttendanceTotal, "single")
	return &model.MarkAttendanceResponse{}, nil
}

// BatchMarkAttendance marks every account it can. An account failing any
// check is skipped and reported without affecting the others.
func (d *eventDomain) BatchMarkAttendance(
	ctx context.Context, req *model.BatchMarkAttendanceRequest,
) (*model.BatchMarkAttendanceResponse, error) {
	maxBatch := xcontext.Configs(ctx).Event.MaxBatchSize
	if len(req.UserIDs) == 0 || len(req.UserIDs) > maxBatch {
		return nil, errorx.New(errorx.BadRequest, "Batch size must be in [1, %d]", maxBatch)
	}

	ctx, event, unlock, err := d.prepareAttendance(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	resp := &model.BatchMarkAttendanceResponse{Marked: []string{}, Skipped: []model.SkippedAccount{}}
	for _, userID := range req.UserIDs {
		if err := d.markOne(ctx, event, userID); err != nil {
			xcontext.Logger(ctx).Debugf("Skip attendance of %s: %v", userID, err)
			resp.Skipped = append(resp.Skipped, model.SkippedAccount{UserID: userID, Reason: err.Error()})
			continue
		}

		common.IncCounter(common.AttendanceTotal, "batch")
		resp.Marked = append(resp.Marked, userID)
	}

	return resp, nil
}

// prepareAttendance checks the operator and locks the event. The returned
// event is read under the lock and is active. The caller must release the
// lock with the returned function.
func (d *eventDomain) prepareAttendance(
	ctx context.Context, eventID string,
) (context.Context, *entity.Event, func(), error) {
	event, err := d.getEvent(ctx, eventID)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := d.verifyEventOperator(ctx, event); err != nil {
		return nil, nil, nil, err
	}

	if err := d.pauseGuard.Guard(ctx, entity.EventModule, event.ID); err != nil {
		return nil, nil, nil, err
	}

	ctx, unlock := d.writerLock.Lock(ctx, common.LockKeyEvent(event.ID))

	// Reload under the lock, a transition may have committed meanwhile.
	event, err = d.getEvent(ctx, eventID)
	if err != nil {
		unlock()
		return nil, nil, nil, err
	}

	if event.Status != entity.EventActive {
		unlock()
		return nil, nil, nil, errorx.New(errorx.FailedPrecondition, "Attendance is only allowed on an active event")
	}

	return ctx, event, unlock, nil
}

// markOne records the attendance of one account and credits its attendance
// reward as one atomic unit. The caller must hold the event lock.
func (d *eventDomain) markOne(ctx context.Context, event *entity.Event, userID string) error {
	if userID == "" {
		return errorx.New(errorx.BadRequest, "Not allow a null account")
	}

	// The attendance credit nests inside the transaction below, so its
	// account lock is taken first.
	if event.RewardLedgerID != "" {
		var unlock func()
		ctx, unlock = d.writerLock.Lock(ctx, common.LockKeyLedgerAccount(event.RewardLedgerID, userID))
		defer unlock()
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	now := xcontext.Now(ctx)
	participant, err := d.participantRepo.Get(ctx, event.ID, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get participant: %v", err)
		return errorx.Unknown
	}

	if participant == nil {
		if event.RequiresRegistration {
			return errorx.New(errorx.FailedPrecondition, "Account is not registered")
		}

		// A walk-in attendee takes a seat.
		if err := d.eventRepo.IncreaseParticipant(ctx, event.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New(errorx.ResourceExhausted, "Event is full")
			}

			xcontext.Logger(ctx).Errorf("Cannot increase participant count: %v", err)
			return errorx.Unknown
		}

		err := d.participantRepo.Create(ctx, &entity.EventParticipant{
			EventID:    event.ID,
			UserID:     userID,
			Attended:   true,
			AttendedAt: sql.NullTime{Valid: true, Time: now},
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create participant: %v", err)
			return errorx.Unknown
		}
	} else {
		if participant.Attended {
			return errorx.New(errorx.AlreadyExists, "Already attended")
		}

		if err := d.participantRepo.MarkAttended(ctx, event.ID, userID, now); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New(errorx.AlreadyExists, "Already attended")
			}

			xcontext.Logger(ctx).Errorf("Cannot mark attended: %v", err)
			return errorx.Unknown
		}
	}

	if err := d.eventRepo.IncreaseAttendee(ctx, event.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increase attendee count: %v", err)
		return errorx.Unknown
	}

	if event.RewardLedgerID != "" {
		_, err := d.ledgerDomain.CreditAttendance(
			asServiceAccount(ctx, xcontext.Configs(ctx).ServiceAccounts.EventManager),
			&model.CreditAttendanceRequest{LedgerID: event.RewardLedgerID, UserID: userID},
		)
		if err != nil {
			return err
		}
	}

	if err := xcontext.CommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *eventDomain) ResolveRewardLedger(ctx context.Context, eventID string) (string, bool) {
	event, err := d.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get event: %v", err)
		}

		return "", false
	}

	return event.RewardLedgerID, event.RewardLedgerID != ""
}

func (d *eventDomain) RequestSurveyReward(ctx context.Context, eventID, userID string) error {
	ledgerID, ok := d.ResolveRewardLedger(ctx, eventID)
	if !ok {
		return errorx.New(errorx.NotFound, "Event has no reward ledger")
	}

	_, err := d.ledgerDomain.CreditSurvey(
		asServiceAccount(ctx, xcontext.Configs(ctx).ServiceAccounts.EventManager),
		&model.CreditSurveyRequest{LedgerID: ledgerID, UserID: userID},
	)

	return err
}

func (d *eventDomain) Get(ctx context.Context, req *model.GetEventRequest) (*model.GetEventResponse, error) {
	event, err := d.getEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	return &model.GetEventResponse{Event: model.ConvertEvent(event)}, nil
}

func (d *eventDomain) IsRegistered(
	ctx context.Context, req *model.IsRegisteredRequest,
) (*model.IsRegisteredResponse, error) {
	participant, err := d.getParticipant(ctx, req.EventID, requestUserOr(ctx, req.UserID))
	if err != nil {
		return nil, err
	}

	return &model.IsRegisteredResponse{Registered: participant != nil && participant.Registered}, nil
}

func (d *eventDomain) HasAttended(
	ctx context.Context, req *model.HasAttendedRequest,
) (*model.HasAttendedResponse, error) {
	participant, err := d.getParticipant(ctx, req.EventID, requestUserOr(ctx, req.UserID))
	if err != nil {
		return nil, err
	}

	return &model.HasAttendedResponse{Attended: participant != nil && participant.Attended}, nil
}

func (d *eventDomain) GetActive(
	ctx context.Context, req *model.GetActiveEventsRequest,
) (*model.GetActiveEventsResponse, error) {
	offset, limit, err := paginate(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	events, err := d.eventRepo.GetListByStatus(ctx,
		[]entity.EventStatus{entity.EventActive, entity.EventVotingOpen}, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active events: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetActiveEventsResponse{Events: convertEvents(events)}, nil
}

func (d *eventDomain) GetUpcoming(
	ctx context.Context, req *model.GetUpcomingEventsRequest,
) (*model.GetUpcomingEventsResponse, error) {
	offset, limit, err := paginate(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	events, err := d.eventRepo.GetUpcoming(ctx, xcontext.Now(ctx), offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get upcoming events: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetUpcomingEventsResponse{Events: convertEvents(events)}, nil
}

func (d *eventDomain) CanVote(ctx context.Context, req *model.CanVoteRequest) (*model.CanVoteResponse, error) {
	event, err := d.getEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	if event.Status != entity.EventVotingOpen ||
		!dateutil.Within(xcontext.Now(ctx), event.VotingStart, event.VotingEnd) {
		return &model.CanVoteResponse{CanVote: false}, nil
	}

	participant, err := d.getParticipant(ctx, req.EventID, requestUserOr(ctx, req.UserID))
	if err != nil {
		return nil, err
	}

	return &model.CanVoteResponse{CanVote: participant != nil && participant.Attended}, nil
}

func (d *eventDomain) GetParticipants(
	ctx context.Context, req *model.GetParticipantsRequest,
) (*model.GetParticipantsResponse, error) {
	event, err := d.getEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	if err := d.verifyEventOperator(ctx, event); err != nil {
		return nil, err
	}

	offset, limit, err := paginate(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	participants, err := d.participantRepo.GetList(ctx, event.ID, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participants: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Participant{}
	for i := range participants {
		result = append(result, model.ConvertParticipant(&participants[i]))
	}

	return &model.GetParticipantsResponse{Participants: result}, nil
}

func (d *eventDomain) getEvent(ctx context.Context, eventID string) (*entity.Event, error) {
	event, err := d.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found event")
		}

		xcontext.Logger(ctx).Errorf("Cannot get event: %v", err)
		return nil, errorx.Unknown
	}

	return event, nil
}

// getParticipant returns nil without error if the account is unknown to the
// event.
func (d *eventDomain) getParticipant(ctx context.Context, eventID, userID string) (*entity.EventParticipant, error) {
	if _, err := d.getEvent(ctx, eventID); err != nil {
		return nil, err
	}

	participant, err := d.participantRepo.Get(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get participant: %v", err)
		return nil, errorx.Unknown
	}

	return participant, nil
}

// verifyEventOperator passes for the organizer owning the event or an admin.
func (d *eventDomain) verifyEventOperator(ctx context.Context, event *entity.Event) error {
	if err := d.roleVerifier.VerifyOwnerOr(ctx, event.OrganizerID, entity.AdminRole); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	return nil
}

func convertEvents(events []entity.Event) []model.Event {
	result := []model.Event{}
	for i := range events {
		result = append(result, model.ConvertEvent(&events[i]))
	}

	return result
}
