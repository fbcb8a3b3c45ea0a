package domain

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/questx-lab/eventreward/internal/common"
	"github.com/questx-lab/eventreward/internal/model"
	"github.com/questx-lab/eventreward/internal/repository"
	"github.com/questx-lab/eventreward/pkg/testutil"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

var (
	eventStart  = testutil.Now.Add(time.Hour)
	eventEnd    = eventStart.Add(3 * time.Hour)
	votingStart = eventStart.Add(time.Hour)
	votingEnd   = votingStart.Add(24 * time.Hour)
)

type testSuite struct {
	ledger     *rewardLedgerDomain
	event      *eventDomain
	voting     *votingDomain
	redemption *redemptionDomain
	role       *roleDomain

	redis     *testutil.MockRedisClient
	publisher *testutil.MockPublisher
}

func newTestSuite(t *testing.T) *testSuite {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	roleRepo := repository.NewRoleRepository()
	roleVerifier := common.NewRoleVerifier(roleRepo)
	pauseRepo := repository.NewPauseRepository()
	pauseGuard := common.NewPauseGuard(pauseRepo)
	writerLock := common.NewWriterLock()
	ballotRepo := repository.NewBallotRepository()
	categoryRepo := repository.NewCategoryRepository()

	s := &testSuite{
		redis:     &testutil.MockRedisClient{},
		publisher: &testutil.MockPublisher{},
	}

	s.ledger = NewRewardLedgerDomain(
		repository.NewRewardLedgerRepository(),
		roleVerifier, pauseGuard, writerLock, node, s.redis, s.publisher,
	)
	s.event = NewEventDomain(
		repository.NewEventRepository(),
		repository.NewParticipantRepository(),
		ballotRepo, categoryRepo, s.ledger,
		roleVerifier, pauseGuard, writerLock,
	)
	s.voting = NewVotingDomain(categoryRepo, ballotRepo, s.event, roleVerifier, pauseGuard, writerLock, s.publisher)
	s.redemption = NewRedemptionDomain(
		repository.NewMerchItemRepository(),
		repository.NewRedemptionRepository(),
		s.ledger, roleVerifier, pauseGuard, writerLock, s.publisher,
	)
	s.role = NewRoleDomain(roleRepo, pauseRepo, roleVerifier)

	return s
}

func as(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}

func at(ctx context.Context, t time.Time) context.Context {
	return testutil.WithTime(ctx, t)
}

func validCreateEventRequest(requiresRegistration bool) *model.CreateEventRequest {
	return &model.CreateEventRequest{
		Name:                 "Go meetup",
		Description:          "Monthly meetup",
		Location:             "Hall A",
		StartTime:            eventStart,
		EndTime:              eventEnd,
		VotingStart:          votingStart,
		VotingEnd:            votingEnd,
		Capacity:             10,
		RequiresRegistration: requiresRegistration,
		AttendanceReward:     100,
		SurveyReward:         200,
		CategoryIDs:          []string{testutil.Category1, testutil.Category2},
	}
}

// createEvent creates an event as Organizer1 with two categories, an
// attendance reward of 100 and a survey reward of 200.
func (s *testSuite) createEvent(t *testing.T, ctx context.Context, requiresRegistration bool) *model.CreateEventResponse {
	resp, err := s.event.Create(as(ctx, testutil.Organizer1), validCreateEventRequest(requiresRegistration))
	require.NoError(t, err)
	return resp
}

// startEvent creates an event and activates it.
func (s *testSuite) startEvent(t *testing.T, ctx context.Context, requiresRegistration bool) *model.CreateEventResponse {
	resp := s.createEvent(t, ctx, requiresRegistration)

	_, err := s.event.Activate(at(as(ctx, testutil.Organizer1), eventStart), &model.ActivateEventRequest{EventID: resp.ID})
	require.NoError(t, err)
	return resp
}

// openVoting moves an active event to voting_open.
func (s *testSuite) openVoting(t *testing.T, ctx context.Context, eventID string) {
	_, err := s.event.OpenVoting(at(as(ctx, testutil.Organizer1), votingStart), &model.OpenVotingRequest{EventID: eventID})
	require.NoError(t, err)
}

func (s *testSuite) markAttendance(t *testing.T, ctx context.Context, eventID, userID string) {
	_, err := s.event.MarkAttendance(
		at(as(ctx, testutil.Organizer1), eventStart),
		&model.MarkAttendanceRequest{EventID: eventID, UserID: userID},
	)
	require.NoError(t, err)
}

func (s *testSuite) balanceOf(t *testing.T, ctx context.Context, ledgerID, userID string) uint64 {
	resp, err := s.ledger.GetBalance(ctx, &model.GetBalanceRequest{LedgerID: ledgerID, UserID: userID})
	require.NoError(t, err)
	return resp.Balance
}
