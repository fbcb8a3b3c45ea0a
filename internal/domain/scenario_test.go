package domain

import (
	"context"
	"testing"

	"github.com/questx-lab/eventreward/internal/model"
	"github.com/questx-lab/eventreward/pkg/errorx"
	"github.com/questx-lab/eventreward/pkg/testutil"
	"github.com/stretchr/testify/require"
)

// rewardFlow is an event whose ledger is accepted by the shop, with a shirt
// costing 150 that can be redeemed once per account.
type rewardFlow struct {
	s        *testSuite
	eventID  string
	ledgerID string
	itemID   string
}

func newRewardFlow(t *testing.T, ctx context.Context) *rewardFlow {
	s := newTestSuite(t)
	event := s.startEvent(t, ctx, false)

	organizer := as(ctx, testutil.Organizer1)
	_, err := s.redemption.AddSupportedLedger(organizer, &model.AddSupportedLedgerRequest{LedgerID: event.RewardLedgerID})
	require.NoError(t, err)

	return &rewardFlow{
		s:        s,
		eventID:  event.ID,
		ledgerID: event.RewardLedgerID,
		itemID:   createItem(t, s, ctx, &model.CreateItemRequest{Name: "T-shirt", Price: 150, Stock: 10, MaxPerUser: 1}),
	}
}

func (f *rewardFlow) progress(t *testing.T, ctx context.Context, userID string) *model.GetProgressResponse {
	resp, err := f.s.ledger.GetProgress(ctx, &model.GetProgressRequest{LedgerID: f.ledgerID, UserID: userID})
	require.NoError(t, err)
	return resp
}

func (f *rewardFlow) redeem(ctx context.Context, userID string) (*model.RedeemResponse, error) {
	return f.s.redemption.Redeem(as(ctx, userID),
		&model.RedeemRequest{ItemID: f.itemID, Quantity: 1, LedgerID: f.ledgerID})
}

func TestRewardFlow_AttendVoteRedeem(t *testing.T) {
	ctx := testutil.MockContext()
	f := newRewardFlow(t, ctx)

	f.s.markAttendance(t, ctx, f.eventID, testutil.User1)
	f.s.openVoting(t, ctx, f.eventID)
	progress := f.progress(t, ctx, testutil.User1)
	require.Equal(t, uint64(100), progress.Balance)
	require.True(t, progress.AttendanceClaimed)
	require.False(t, progress.SurveyClaimed)
	require.Equal(t, uint64(300), progress.MaxObtainable)

	voted, err := f.s.voting.BatchVote(at(as(ctx, testutil.User1), votingStart), &model.BatchVoteRequest{
		EventID:     f.eventID,
		CategoryIDs: []string{testutil.Category1, testutil.Category2},
		Ratings:     []int{5, 3},
	})
	require.NoError(t, err)
	require.True(t, voted.Completed)

	progress = f.progress(t, ctx, testutil.User1)
	require.Equal(t, uint64(300), progress.Balance)
	require.True(t, progress.SurveyClaimed)

	order, err := f.redeem(ctx, testutil.User1)
	require.NoError(t, err)
	require.Equal(t, "pending", order.Order.Status)
	require.Equal(t, uint64(150), f.s.balanceOf(t, ctx, f.ledgerID, testutil.User1))
	require.Equal(t, uint64(9), f.s.stockOf(t, ctx, f.itemID))

	// A second shirt exceeds the per-account cap.
	_, err = f.redeem(ctx, testutil.User1)
	require.True(t, errorx.Is(err, errorx.ResourceExhausted), "got error %v", err)
	require.Equal(t, uint64(150), f.s.balanceOf(t, ctx, f.ledgerID, testutil.User1))
	require.Equal(t, uint64(9), f.s.stockOf(t, ctx, f.itemID))
}

func TestRewardFlow_PartialSurvey(t *testing.T) {
	ctx := testutil.MockContext()
	f := newRewardFlow(t, ctx)

	f.s.markAttendance(t, ctx, f.eventID, testutil.User1)
	f.s.openVoting(t, ctx, f.eventID)

	_, err := f.s.voting.Vote(at(as(ctx, testutil.User1), votingStart), &model.VoteRequest{
		EventID:    f.eventID,
		CategoryID: testutil.Category1,
		Rating:     4,
	})
	require.NoError(t, err)

	progress := f.progress(t, ctx, testutil.User1)
	require.False(t, progress.SurveyClaimed)
	require.Equal(t, uint64(100), progress.Balance)

	_, err = f.redeem(ctx, testutil.User1)
	require.True(t, errorx.Is(err, errorx.ResourceExhausted), "got error %v", err)

	_, err = f.s.ledger.Debit(as(ctx, testutil.Burner1), &model.DebitRequest{
		LedgerID: f.ledgerID,
		UserID:   testutil.User1,
		Amount:   150,
		Reason:   "manual",
	})
	require.True(t, errorx.Is(err, errorx.ResourceExhausted), "got error %v", err)

	require.Equal(t, uint64(100), f.s.balanceOf(t, ctx, f.ledgerID, testutil.User1))
	require.Equal(t, uint64(10), f.s.stockOf(t, ctx, f.itemID))
}

func TestRewardFlow_SurveyWithoutAttendance(t *testing.T) {
	ctx := testutil.MockContext()
	f := newRewardFlow(t, ctx)
	f.s.openVoting(t, ctx, f.eventID)

	// The votes count even though the survey credit is refused.
	voted, err := f.s.voting.BatchVote(at(as(ctx, testutil.User2), votingStart), &model.BatchVoteRequest{
		EventID:     f.eventID,
		CategoryIDs: []string{testutil.Category1, testutil.Category2},
		Ratings:     []int{2, 2},
	})
	require.NoError(t, err)
	require.True(t, voted.Completed)

	progress := f.progress(t, ctx, testutil.User2)
	require.False(t, progress.AttendanceClaimed)
	require.False(t, progress.SurveyClaimed)
	require.Zero(t, progress.Balance)

	dist, err := f.s.voting.GetRatingDistribution(ctx, &model.GetRatingDistributionRequest{
		CategoryID: testutil.Category1,
	})
	require.NoError(t, err)
	require.Equal(t, [5]uint64{0, 1, 0, 0, 0}, dist.Distribution)
}

func TestRewardFlow_CancelKeepsCredits(t *testing.T) {
	ctx := testutil.MockContext()
	f := newRewardFlow(t, ctx)

	f.s.markAttendance(t, ctx, f.eventID, testutil.User1)
	f.s.openVoting(t, ctx, f.eventID)
	_, err := f.s.voting.BatchVote(at(as(ctx, testutil.User1), votingStart), &model.BatchVoteRequest{
		EventID:     f.eventID,
		CategoryIDs: []string{testutil.Category1, testutil.Category2},
		Ratings:     []int{5, 5},
	})
	require.NoError(t, err)

	order, err := f.redeem(ctx, testutil.User1)
	require.NoError(t, err)

	_, err = f.s.redemption.Cancel(as(ctx, testutil.User1), &model.CancelOrderRequest{ID: order.Order.ID})
	require.NoError(t, err)

	require.Equal(t, uint64(10), f.s.stockOf(t, ctx, f.itemID))
	require.Equal(t, uint64(150), f.s.balanceOf(t, ctx, f.ledgerID, testutil.User1))

	// The per-account count is back to zero, so the cap allows one more.
	_, err = f.redeem(ctx, testutil.User1)
	require.NoError(t, err)
	require.Equal(t, uint64(0), f.s.balanceOf(t, ctx, f.ledgerID, testutil.User1))
	require.Equal(t, uint64(9), f.s.stockOf(t, ctx, f.itemID))
}
