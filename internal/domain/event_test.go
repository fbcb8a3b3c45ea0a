package domain

import (
	"sync"
	"testing"
	"time"

	"github.com/questx-lab/eventreward/internal/common"
	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/internal/model"
	"github.com/questx-lab/eventreward/pkg/errorx"
	"github.com/questx-lab/eventreward/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_eventDomain_Create(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		modify  func(*model.CreateEventRequest)
		wantErr errorx.Code
	}{
		{
			name:   "happy case",
			userID: testutil.Organizer1,
		},
		{
			name:   "no category",
			userID: testutil.Organizer1,
			modify: func(req *model.CreateEventRequest) { req.CategoryIDs = nil },
		},
		{
			name:    "not an organizer",
			userID:  testutil.User1,
			wantErr: errorx.PermissionDenied,
		},
		{
			name:    "admin is not an organizer",
			userID:  testutil.Admin,
			wantErr: errorx.PermissionDenied,
		},
		{
			name:    "empty name",
			userID:  testutil.Organizer1,
			modify:  func(req *model.CreateEventRequest) { req.Name = "" },
			wantErr: errorx.BadRequest,
		},
		{
			name:    "start in the past",
			userID:  testutil.Organizer1,
			modify:  func(req *model.CreateEventRequest) { req.StartTime = testutil.Now },
			wantErr: errorx.BadRequest,
		},
		{
			name:    "end before start",
			userID:  testutil.Organizer1,
			modify:  func(req *model.CreateEventRequest) { req.EndTime = req.StartTime },
			wantErr: errorx.BadRequest,
		},
		{
			name:    "too short",
			userID:  testutil.Organizer1,
			modify:  func(req *model.CreateEventRequest) { req.EndTime = req.StartTime.Add(time.Minute) },
			wantErr: errorx.BadRequest,
		},
		{
			name:    "voting before start",
			userID:  testutil.Organizer1,
			modify:  func(req *model.CreateEventRequest) { req.VotingStart = req.StartTime.Add(-time.Minute) },
			wantErr: errorx.BadRequest,
		},
		{
			name:    "voting end before voting start",
			userID:  testutil.Organizer1,
			modify:  func(req *model.CreateEventRequest) { req.VotingEnd = req.VotingStart },
			wantErr: errorx.BadRequest,
		},
		{
			name:   "voting too long",
			userID: testutil.Organizer1,
			modify: func(req *model.CreateEventRequest) {
				req.VotingEnd = req.VotingStart.Add(8 * 24 * time.Hour)
			},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "zero capacity",
			userID:  testutil.Organizer1,
			modify:  func(req *model.CreateEventRequest) { req.Capacity = 0 },
			wantErr: errorx.BadRequest,
		},
		{
			name:   "duplicated category",
			userID: testutil.Organizer1,
			modify: func(req *model.CreateEventRequest) {
				req.CategoryIDs = []string{testutil.Category1, testutil.Category1}
			},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "unknown category",
			userID:  testutil.Organizer1,
			modify:  func(req *model.CreateEventRequest) { req.CategoryIDs = []string{"unknown"} },
			wantErr: errorx.NotFound,
		},
		{
			name:    "inactive category",
			userID:  testutil.Organizer1,
			modify:  func(req *model.CreateEventRequest) { req.CategoryIDs = []string{testutil.InactiveCategory} },
			wantErr: errorx.FailedPrecondition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContextWithUserID(tt.userID)
			s := newTestSuite(t)

			req := validCreateEventRequest(false)
			if tt.modify != nil {
				tt.modify(req)
			}

			got, err := s.event.Create(ctx, req)
			if tt.wantErr != 0 {
				require.True(t, errorx.Is(err, tt.wantErr), "got error %v", err)
				return
			}

			require.NoError(t, err)
			require.NotEmpty(t, got.ID)
			require.NotEmpty(t, got.RewardLedgerID)
			require.Len(t, got.Fingerprint, 64)

			event, err := s.event.Get(ctx, &model.GetEventRequest{EventID: got.ID})
			require.NoError(t, err)
			require.Equal(t, "created", event.Event.Status)
			require.Equal(t, tt.userID, event.Event.OrganizerID)
			require.Equal(t, got.RewardLedgerID, event.Event.RewardLedgerID)

			ledgerID, ok := s.event.ResolveRewardLedger(ctx, got.ID)
			require.True(t, ok)
			require.Equal(t, got.RewardLedgerID, ledgerID)

			progress, err := s.ledger.GetProgress(ctx,
				&model.GetProgressRequest{LedgerID: ledgerID, UserID: testutil.User1})
			require.NoError(t, err)
			require.Equal(t, req.AttendanceReward+req.SurveyReward, progress.MaxObtainable)
		})
	}
}

func Test_eventDomain_Lifecycle(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	event := s.createEvent(t, ctx, false)
	organizer := as(ctx, testutil.Organizer1)

	status := func() string {
		resp, err := s.event.Get(ctx, &model.GetEventRequest{EventID: event.ID})
		require.NoError(t, err)
		return resp.Event.Status
	}

	// Skipping a state is never allowed.
	_, err := s.event.OpenVoting(at(organizer, votingStart), &model.OpenVotingRequest{EventID: event.ID})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	_, err = s.event.Activate(organizer, &model.ActivateEventRequest{EventID: event.ID})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	_, err = s.event.Activate(at(as(ctx, testutil.Organizer2), eventStart), &model.ActivateEventRequest{EventID: event.ID})
	require.True(t, errorx.Is(err, errorx.PermissionDenied), "got error %v", err)

	_, err = s.event.Activate(at(organizer, eventStart), &model.ActivateEventRequest{EventID: event.ID})
	require.NoError(t, err)
	require.Equal(t, "active", status())

	_, err = s.event.OpenVoting(at(organizer, votingStart.Add(-time.Second)), &model.OpenVotingRequest{EventID: event.ID})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	_, err = s.event.OpenVoting(at(organizer, votingEnd), &model.OpenVotingRequest{EventID: event.ID})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	_, err = s.event.OpenVoting(at(organizer, votingStart), &model.OpenVotingRequest{EventID: event.ID})
	require.NoError(t, err)
	require.Equal(t, "voting_open", status())

	// Only an admin can close before the end of the window.
	_, err = s.event.CloseVoting(at(organizer, votingStart), &model.CloseVotingRequest{EventID: event.ID})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	_, err = s.event.Cancel(organizer, &model.CancelEventRequest{EventID: event.ID})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	_, err = s.event.CloseVoting(at(organizer, votingEnd), &model.CloseVotingRequest{EventID: event.ID})
	require.NoError(t, err)
	require.Equal(t, "voting_closed", status())

	_, err = s.event.Complete(organizer, &model.CompleteEventRequest{EventID: event.ID})
	require.NoError(t, err)
	require.Equal(t, "completed", status())

	_, err = s.event.Complete(organizer, &model.CompleteEventRequest{EventID: event.ID})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)
}

func Test_eventDomain_CloseVotingByAdmin(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	event := s.startEvent(t, ctx, false)
	s.openVoting(t, ctx, event.ID)

	_, err := s.event.CloseVoting(at(as(ctx, testutil.Admin), votingStart), &model.CloseVotingRequest{EventID: event.ID})
	require.NoError(t, err)

	// The tally stops accepting votes with the event.
	_, err = s.voting.Vote(at(as(ctx, testutil.User1), votingStart), &model.VoteRequest{
		EventID: event.ID, CategoryID: testutil.Category1, Rating: 5,
	})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)
}

func Test_eventDomain_Cancel(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	organizer := as(ctx, testutil.Organizer1)

	created := s.createEvent(t, ctx, false)
	_, err := s.event.Cancel(organizer, &model.CancelEventRequest{EventID: created.ID})
	require.NoError(t, err)

	_, err = s.event.Activate(at(organizer, eventStart), &model.ActivateEventRequest{EventID: created.ID})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	active := s.startEvent(t, ctx, false)
	_, err = s.event.Cancel(as(ctx, testutil.Admin), &model.CancelEventRequest{EventID: active.ID})
	require.NoError(t, err)

	// The ballot is closed even inside its window.
	_, err = s.voting.Vote(at(as(ctx, testutil.User1), votingStart), &model.VoteRequest{
		EventID: active.ID, CategoryID: testutil.Category1, Rating: 5,
	})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	_, err = s.event.Cancel(organizer, &model.CancelEventRequest{EventID: active.ID})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)
}

func Test_eventDomain_Registration(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)

	req := validCreateEventRequest(true)
	req.Capacity = 2
	event, err := s.event.Create(as(ctx, testutil.Organizer1), req)
	require.NoError(t, err)

	walkIn := s.createEvent(t, ctx, false)
	_, err = s.event.Register(as(ctx, testutil.User1), &model.RegisterRequest{EventID: walkIn.ID})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	_, err = s.event.Register(as(ctx, testutil.User1), &model.RegisterRequest{EventID: event.ID})
	require.NoError(t, err)

	_, err = s.event.Register(as(ctx, testutil.User1), &model.RegisterRequest{EventID: event.ID})
	require.True(t, errorx.Is(err, errorx.AlreadyExists), "got error %v", err)

	_, err = s.event.Register(as(ctx, testutil.User2), &model.RegisterRequest{EventID: event.ID})
	require.NoError(t, err)

	_, err = s.event.Register(as(ctx, testutil.User3), &model.RegisterRequest{EventID: event.ID})
	require.True(t, errorx.Is(err, errorx.ResourceExhausted), "got error %v", err)

	// Capacity cannot drop below the registered accounts.
	_, err = s.event.Update(as(ctx, testutil.Organizer1), &model.UpdateEventRequest{ID: event.ID, Capacity: 1})
	require.True(t, errorx.Is(err, errorx.BadRequest), "got error %v", err)

	_, err = s.event.Unregister(as(ctx, testutil.User2), &model.UnregisterRequest{EventID: event.ID})
	require.NoError(t, err)

	_, err = s.event.Unregister(as(ctx, testutil.User2), &model.UnregisterRequest{EventID: event.ID})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	_, err = s.event.Register(as(ctx, testutil.User3), &model.RegisterRequest{EventID: event.ID})
	require.NoError(t, err)

	registered, err := s.event.IsRegistered(ctx, &model.IsRegisteredRequest{EventID: event.ID, UserID: testutil.User3})
	require.NoError(t, err)
	require.True(t, registered.Registered)

	registered, err = s.event.IsRegistered(ctx, &model.IsRegisteredRequest{EventID: event.ID, UserID: testutil.User2})
	require.NoError(t, err)
	require.False(t, registered.Registered)

	got, err := s.event.Get(ctx, &model.GetEventRequest{EventID: event.ID})
	require.NoError(t, err)
	require.Equal(t, uint64(2), got.Event.RegisteredCount)

	_, err = s.event.Activate(at(as(ctx, testutil.Organizer1), eventStart), &model.ActivateEventRequest{EventID: event.ID})
	require.NoError(t, err)

	_, err = s.event.Register(at(as(ctx, testutil.User2), eventStart), &model.RegisterRequest{EventID: event.ID})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	_, err = s.event.Unregister(at(as(ctx, testutil.User1), eventStart), &model.UnregisterRequest{EventID: event.ID})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)
}

func Test_eventDomain_MarkAttendance(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	organizer := at(as(ctx, testutil.Organizer1), eventStart)

	event := s.createEvent(t, ctx, true)
	_, err := s.event.Register(as(ctx, testutil.User1), &model.RegisterRequest{EventID: event.ID})
	require.NoError(t, err)

	_, err = s.event.MarkAttendance(organizer, &model.MarkAttendanceRequest{EventID: event.ID, UserID: testutil.User1})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	_, err = s.event.Activate(organizer, &model.ActivateEventRequest{EventID: event.ID})
	require.NoError(t, err)

	_, err = s.event.MarkAttendance(at(as(ctx, testutil.User2), eventStart),
		&model.MarkAttendanceRequest{EventID: event.ID, UserID: testutil.User1})
	require.True(t, errorx.Is(err, errorx.PermissionDenied), "got error %v", err)

	_, err = s.event.MarkAttendance(organizer, &model.MarkAttendanceRequest{EventID: event.ID, UserID: testutil.User2})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	_, err = s.event.MarkAttendance(organizer, &model.MarkAttendanceRequest{EventID: event.ID, UserID: testutil.User1})
	require.NoError(t, err)
	require.Equal(t, uint64(100), s.balanceOf(t, ctx, event.RewardLedgerID, testutil.User1))

	_, err = s.event.MarkAttendance(organizer, &model.MarkAttendanceRequest{EventID: event.ID, UserID: testutil.User1})
	require.True(t, errorx.Is(err, errorx.AlreadyExists), "got error %v", err)
	require.Equal(t, uint64(100), s.balanceOf(t, ctx, event.RewardLedgerID, testutil.User1))

	attended, err := s.event.HasAttended(ctx, &model.HasAttendedRequest{EventID: event.ID, UserID: testutil.User1})
	require.NoError(t, err)
	require.True(t, attended.Attended)

	got, err := s.event.Get(ctx, &model.GetEventRequest{EventID: event.ID})
	require.NoError(t, err)
	require.Equal(t, uint64(1), got.Event.AttendeeCount)
	require.Equal(t, uint64(1), got.Event.ParticipantCount)
}

func Test_eventDomain_MarkAttendanceRollback(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	event := s.startEvent(t, ctx, false)

	// A paused ledger rejects the credit, so nothing of the attendance stays.
	_, err := s.role.Pause(as(ctx, testutil.Admin),
		&model.PauseRequest{Module: "reward_ledger", Scope: event.RewardLedgerID})
	require.NoError(t, err)

	_, err = s.event.MarkAttendance(at(as(ctx, testutil.Organizer1), eventStart),
		&model.MarkAttendanceRequest{EventID: event.ID, UserID: testutil.User1})
	require.True(t, errorx.Is(err, errorx.Paused), "got error %v", err)

	attended, err := s.event.HasAttended(ctx, &model.HasAttendedRequest{EventID: event.ID, UserID: testutil.User1})
	require.NoError(t, err)
	require.False(t, attended.Attended)

	got, err := s.event.Get(ctx, &model.GetEventRequest{EventID: event.ID})
	require.NoError(t, err)
	require.Equal(t, uint64(0), got.Event.ParticipantCount)
	require.Equal(t, uint64(0), got.Event.AttendeeCount)
}

func Test_eventDomain_BatchMarkAttendance(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	organizer := at(as(ctx, testutil.Organizer1), eventStart)

	req := validCreateEventRequest(false)
	req.Capacity = 2
	event, err := s.event.Create(as(ctx, testutil.Organizer1), req)
	require.NoError(t, err)

	_, err = s.event.Activate(organizer, &model.ActivateEventRequest{EventID: event.ID})
	require.NoError(t, err)

	_, err = s.event.BatchMarkAttendance(organizer, &model.BatchMarkAttendanceRequest{EventID: event.ID})
	require.True(t, errorx.Is(err, errorx.BadRequest), "got error %v", err)

	resp, err := s.event.BatchMarkAttendance(organizer, &model.BatchMarkAttendanceRequest{
		EventID: event.ID,
		UserIDs: []string{testutil.User1, "", testutil.User1, testutil.User2, testutil.User3},
	})
	require.NoError(t, err)
	require.Equal(t, []string{testutil.User1, testutil.User2}, resp.Marked)
	require.Len(t, resp.Skipped, 3)
	require.Equal(t, "", resp.Skipped[0].UserID)
	require.Equal(t, testutil.User1, resp.Skipped[1].UserID)
	require.Equal(t, testutil.User3, resp.Skipped[2].UserID)

	require.Equal(t, uint64(100), s.balanceOf(t, ctx, event.RewardLedgerID, testutil.User1))
	require.Equal(t, uint64(100), s.balanceOf(t, ctx, event.RewardLedgerID, testutil.User2))
	require.Equal(t, uint64(0), s.balanceOf(t, ctx, event.RewardLedgerID, testutil.User3))

	participants, err := s.event.GetParticipants(organizer, &model.GetParticipantsRequest{EventID: event.ID})
	require.NoError(t, err)
	require.Len(t, participants.Participants, 2)

	_, err = s.event.GetParticipants(as(ctx, testutil.User1), &model.GetParticipantsRequest{EventID: event.ID})
	require.True(t, errorx.Is(err, errorx.PermissionDenied), "got error %v", err)
}

func Test_eventDomain_CanVote(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	event := s.startEvent(t, ctx, false)
	s.markAttendance(t, ctx, event.ID, testutil.User1)

	canVote := func(now time.Time, userID string) bool {
		resp, err := s.event.CanVote(at(ctx, now), &model.CanVoteRequest{EventID: event.ID, UserID: userID})
		require.NoError(t, err)
		return resp.CanVote
	}

	require.False(t, canVote(votingStart, testutil.User1))

	s.openVoting(t, ctx, event.ID)
	require.True(t, canVote(votingStart, testutil.User1))
	require.False(t, canVote(votingStart, testutil.User2))
	require.False(t, canVote(votingEnd, testutil.User1))
}

func Test_eventDomain_GetEvents(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)

	upcoming := s.createEvent(t, ctx, false)
	active := s.startEvent(t, ctx, false)

	resp, err := s.event.GetUpcoming(ctx, &model.GetUpcomingEventsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Events, 1)
	require.Equal(t, upcoming.ID, resp.Events[0].ID)

	activeResp, err := s.event.GetActive(ctx, &model.GetActiveEventsRequest{})
	require.NoError(t, err)
	require.Len(t, activeResp.Events, 1)
	require.Equal(t, active.ID, activeResp.Events[0].ID)

	_, err = s.event.GetActive(ctx, &model.GetActiveEventsRequest{Offset: -1})
	require.True(t, errorx.Is(err, errorx.BadRequest), "got error %v", err)

	_, err = s.event.Get(ctx, &model.GetEventRequest{EventID: "unknown"})
	require.True(t, errorx.Is(err, errorx.NotFound), "got error %v", err)
}

func Test_eventDomain_RequestSurveyReward(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	event := s.startEvent(t, ctx, false)

	// Survey reward needs the attendance reward first.
	err := s.event.RequestSurveyReward(ctx, event.ID, testutil.User1)
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	s.markAttendance(t, ctx, event.ID, testutil.User1)
	require.NoError(t, s.event.RequestSurveyReward(ctx, event.ID, testutil.User1))
	require.Equal(t, uint64(300), s.balanceOf(t, ctx, event.RewardLedgerID, testutil.User1))

	err = s.event.RequestSurveyReward(ctx, "unknown", testutil.User1)
	require.True(t, errorx.Is(err, errorx.NotFound), "got error %v", err)
}

func Test_eventDomain_MarkAttendanceAfterConcurrentCancel(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	event := s.startEvent(t, ctx, false)
	organizer := at(as(ctx, testutil.Organizer1), eventStart)

	// Hold the event lock so both calls pass their first read of an active
	// event and then wait.
	_, unlock := s.event.writerLock.Lock(ctx, common.LockKeyEvent(event.ID))

	singleErr := make(chan error, 1)
	go func() {
		_, err := s.event.MarkAttendance(organizer,
			&model.MarkAttendanceRequest{EventID: event.ID, UserID: testutil.User1})
		singleErr <- err
	}()

	batchErr := make(chan error, 1)
	go func() {
		_, err := s.event.BatchMarkAttendance(organizer,
			&model.BatchMarkAttendanceRequest{EventID: event.ID, UserIDs: []string{testutil.User2}})
		batchErr <- err
	}()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, s.event.eventRepo.UpdateStatus(ctx, event.ID, entity.EventActive, entity.EventCancelled))
	unlock()

	err := <-singleErr
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)
	err = <-batchErr
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	for _, user := range []string{testutil.User1, testutil.User2} {
		attended, err := s.event.HasAttended(ctx, &model.HasAttendedRequest{EventID: event.ID, UserID: user})
		require.NoError(t, err)
		require.False(t, attended.Attended)
		require.Equal(t, uint64(0), s.balanceOf(t, ctx, event.RewardLedgerID, user))
	}
}

func Test_eventDomain_MarkAttendanceConcurrentWithDebit(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	event := s.startEvent(t, ctx, false)
	organizer := at(as(ctx, testutil.Organizer1), eventStart)
	users := []string{testutil.User1, testutil.User2, testutil.User3}

	errs := make(chan error, 4*len(users))
	wg := sync.WaitGroup{}
	for _, user := range users {
		wg.Add(4)
		go func(user string) {
			defer wg.Done()
			_, err := s.event.MarkAttendance(organizer, &model.MarkAttendanceRequest{EventID: event.ID, UserID: user})
			errs <- err
		}(user)

		for i := 0; i < 3; i++ {
			go func(user string) {
				defer wg.Done()
				_, err := s.ledger.Debit(as(ctx, testutil.Burner1),
					&model.DebitRequest{LedgerID: event.RewardLedgerID, UserID: user, Amount: 10, Reason: "fee"})
				// A debit may run before the attendance credit.
				if errorx.Is(err, errorx.ResourceExhausted) {
					err = nil
				}
				errs <- err
			}(user)
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		require.FailNow(t, "concurrent attendance and debit on one account did not finish")
	}

	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for _, user := range users {
		progress, err := s.ledger.GetProgress(ctx, &model.GetProgressRequest{LedgerID: event.RewardLedgerID, UserID: user})
		require.NoError(t, err)
		require.True(t, progress.AttendanceClaimed)
		require.LessOrEqual(t, progress.Balance, uint64(100))
		require.GreaterOrEqual(t, progress.Balance, uint64(70))
	}
}
