package domain

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/questx-lab/eventreward/internal/model"
	"github.com/questx-lab/eventreward/pkg/errorx"
	"github.com/questx-lab/eventreward/pkg/testutil"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

// fundedLedger returns a supported ledger where User1 and User2 hold 300.
func fundedLedger(t *testing.T, s *testSuite, ctx context.Context) string {
	ledgerID := createLedger(t, s, ctx)
	minter := as(ctx, testutil.Minter1)

	for _, user := range []string{testutil.User1, testutil.User2} {
		_, err := s.ledger.CreditAttendance(minter, &model.CreditAttendanceRequest{LedgerID: ledgerID, UserID: user})
		require.NoError(t, err)
		_, err = s.ledger.CreditSurvey(minter, &model.CreditSurveyRequest{LedgerID: ledgerID, UserID: user})
		require.NoError(t, err)
	}

	_, err := s.redemption.AddSupportedLedger(as(ctx, testutil.Organizer1),
		&model.AddSupportedLedgerRequest{LedgerID: ledgerID})
	require.NoError(t, err)

	return ledgerID
}

func createItem(t *testing.T, s *testSuite, ctx context.Context, req *model.CreateItemRequest) string {
	resp, err := s.redemption.CreateItem(as(ctx, testutil.Organizer1), req)
	require.NoError(t, err)
	return resp.ID
}

func (s *testSuite) stockOf(t *testing.T, ctx context.Context, itemID string) uint64 {
	resp, err := s.redemption.GetItem(ctx, &model.GetItemRequest{ID: itemID})
	require.NoError(t, err)
	return resp.Item.Stock
}

func Test_redemptionDomain_CreateItem(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		req     *model.CreateItemRequest
		wantErr errorx.Code
	}{
		{
			name:   "happy case",
			userID: testutil.Organizer1,
			req:    &model.CreateItemRequest{Name: "T-shirt", Price: 150, Stock: 10, MaxPerUser: 1, Sizes: []string{"S", "M"}},
		},
		{
			name:    "not an organizer",
			userID:  testutil.Fulfiller1,
			req:     &model.CreateItemRequest{Name: "T-shirt", Price: 150, Stock: 10, MaxPerUser: 1},
			wantErr: errorx.PermissionDenied,
		},
		{
			name:    "empty name",
			userID:  testutil.Organizer1,
			req:     &model.CreateItemRequest{Price: 150, Stock: 10, MaxPerUser: 1},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "zero price",
			userID:  testutil.Organizer1,
			req:     &model.CreateItemRequest{Name: "T-shirt", Stock: 10, MaxPerUser: 1},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "zero cap",
			userID:  testutil.Organizer1,
			req:     &model.CreateItemRequest{Name: "T-shirt", Price: 150, Stock: 10},
			wantErr: errorx.BadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContextWithUserID(tt.userID)
			s := newTestSuite(t)

			got, err := s.redemption.CreateItem(ctx, tt.req)
			if tt.wantErr != 0 {
				require.True(t, errorx.Is(err, tt.wantErr), "got error %v", err)
				return
			}

			require.NoError(t, err)

			item, err := s.redemption.GetItem(ctx, &model.GetItemRequest{ID: got.ID})
			require.NoError(t, err)
			require.Equal(t, tt.req.Name, item.Item.Name)
			require.Equal(t, tt.req.Sizes, item.Item.Sizes)
			require.True(t, item.Item.Active)
		})
	}
}

func Test_redemptionDomain_Catalog(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	organizer := as(ctx, testutil.Organizer1)
	itemID := createItem(t, s, ctx, &model.CreateItemRequest{Name: "Mug", Price: 50, Stock: 3, MaxPerUser: 2})

	_, err := s.redemption.UpdateItem(organizer, &model.UpdateItemRequest{ID: itemID, Price: 70, Sizes: []string{"L"}})
	require.NoError(t, err)

	_, err = s.redemption.UpdateStock(organizer, &model.UpdateStockRequest{ID: itemID, Stock: 0})
	require.NoError(t, err)

	item, err := s.redemption.GetItem(ctx, &model.GetItemRequest{ID: itemID})
	require.NoError(t, err)
	require.Equal(t, uint64(70), item.Item.Price)
	require.Equal(t, uint64(0), item.Item.Stock)
	require.Equal(t, []string{"L"}, item.Item.Sizes)
	require.Equal(t, "Mug", item.Item.Name)

	toggled, err := s.redemption.ToggleActive(organizer, &model.ToggleItemActiveRequest{ID: itemID})
	require.NoError(t, err)
	require.False(t, toggled.Active)

	items, err := s.redemption.GetItems(ctx, &model.GetItemsRequest{})
	require.NoError(t, err)
	require.Empty(t, items.Items)

	items, err = s.redemption.GetItems(ctx, &model.GetItemsRequest{IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, items.Items, 1)

	_, err = s.redemption.UpdateStock(as(ctx, testutil.User1), &model.UpdateStockRequest{ID: itemID, Stock: 10})
	require.True(t, errorx.Is(err, errorx.PermissionDenied), "got error %v", err)

	_, err = s.redemption.RemoveSupportedLedger(organizer, &model.RemoveSupportedLedgerRequest{LedgerID: "unknown"})
	require.True(t, errorx.Is(err, errorx.NotFound), "got error %v", err)
}

func Test_redemptionDomain_Redeem(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	ledgerID := fundedLedger(t, s, ctx)

	shirtID := createItem(t, s, ctx, &model.CreateItemRequest{
		Name: "T-shirt", Price: 150, Stock: 1, MaxPerUser: 2, Sizes: []string{"S", "M"},
	})
	capID := createItem(t, s, ctx, &model.CreateItemRequest{Name: "Cap", Price: 400, Stock: 5, MaxPerUser: 1})
	inactiveID := createItem(t, s, ctx, &model.CreateItemRequest{Name: "Pin", Price: 10, Stock: 5, MaxPerUser: 1})
	_, err := s.redemption.ToggleActive(as(ctx, testutil.Organizer1), &model.ToggleItemActiveRequest{ID: inactiveID})
	require.NoError(t, err)

	user := as(ctx, testutil.User1)
	tests := []struct {
		name    string
		req     *model.RedeemRequest
		wantErr errorx.Code
	}{
		{
			name:    "zero quantity",
			req:     &model.RedeemRequest{ItemID: shirtID, Size: "S", LedgerID: ledgerID},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "unsupported ledger",
			req:     &model.RedeemRequest{ItemID: shirtID, Quantity: 1, Size: "S", LedgerID: "unknown"},
			wantErr: errorx.FailedPrecondition,
		},
		{
			name:    "unknown item",
			req:     &model.RedeemRequest{ItemID: "unknown", Quantity: 1, LedgerID: ledgerID},
			wantErr: errorx.NotFound,
		},
		{
			name:    "inactive item",
			req:     &model.RedeemRequest{ItemID: inactiveID, Quantity: 1, LedgerID: ledgerID},
			wantErr: errorx.FailedPrecondition,
		},
		{
			name:    "size is case sensitive",
			req:     &model.RedeemRequest{ItemID: shirtID, Quantity: 1, Size: "s", LedgerID: ledgerID},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "size is required",
			req:     &model.RedeemRequest{ItemID: shirtID, Quantity: 1, LedgerID: ledgerID},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "insufficient stock",
			req:     &model.RedeemRequest{ItemID: shirtID, Quantity: 2, Size: "S", LedgerID: ledgerID},
			wantErr: errorx.ResourceExhausted,
		},
		{
			name:    "insufficient balance",
			req:     &model.RedeemRequest{ItemID: capID, Quantity: 1, LedgerID: ledgerID},
			wantErr: errorx.ResourceExhausted,
		},
		{
			name: "happy case",
			req:  &model.RedeemRequest{ItemID: shirtID, Quantity: 1, Size: "M", LedgerID: ledgerID},
		},
		{
			name:    "sold out",
			req:     &model.RedeemRequest{ItemID: shirtID, Quantity: 1, Size: "M", LedgerID: ledgerID},
			wantErr: errorx.ResourceExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance := s.balanceOf(t, ctx, ledgerID, testutil.User1)

			got, err := s.redemption.Redeem(user, tt.req)
			if tt.wantErr != 0 {
				require.True(t, errorx.Is(err, tt.wantErr), "got error %v", err)
				require.Equal(t, balance, s.balanceOf(t, ctx, ledgerID, testutil.User1))
				return
			}

			require.NoError(t, err)
			require.Equal(t, "pending", got.Order.Status)
			require.Equal(t, uint64(150), got.Order.CreditsSpent)
			require.Equal(t, "M", got.Order.Size)
			require.Equal(t, balance-150, s.balanceOf(t, ctx, ledgerID, testutil.User1))
		})
	}

	require.Equal(t, uint64(0), s.stockOf(t, ctx, shirtID))

	entries, err := s.ledger.GetEntries(ctx, &model.GetLedgerEntriesRequest{LedgerID: ledgerID, UserID: testutil.User1})
	require.NoError(t, err)
	require.Equal(t, "debit", entries.Entries[0].Kind)
	require.Equal(t, "Redeem 1 x T-shirt", entries.Entries[0].Reason)
	require.Equal(t, xcontext.Configs(ctx).ServiceAccounts.Redemption, entries.Entries[0].OperatorID)
}

func Test_redemptionDomain_RedeemMaxPerUser(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	ledgerID := fundedLedger(t, s, ctx)
	itemID := createItem(t, s, ctx, &model.CreateItemRequest{Name: "Sticker", Price: 10, Stock: 10, MaxPerUser: 3})
	user := as(ctx, testutil.User1)

	_, err := s.redemption.Redeem(user, &model.RedeemRequest{ItemID: itemID, Quantity: 2, LedgerID: ledgerID})
	require.NoError(t, err)

	_, err = s.redemption.Redeem(user, &model.RedeemRequest{ItemID: itemID, Quantity: 2, LedgerID: ledgerID})
	require.True(t, errorx.Is(err, errorx.ResourceExhausted), "got error %v", err)

	// The cap is per account.
	_, err = s.redemption.Redeem(as(ctx, testutil.User2), &model.RedeemRequest{ItemID: itemID, Quantity: 3, LedgerID: ledgerID})
	require.NoError(t, err)

	require.Equal(t, uint64(5), s.stockOf(t, ctx, itemID))
	require.Equal(t, uint64(280), s.balanceOf(t, ctx, ledgerID, testutil.User1))
	require.Equal(t, uint64(270), s.balanceOf(t, ctx, ledgerID, testutil.User2))
}

func Test_redemptionDomain_RedeemPaused(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	ledgerID := fundedLedger(t, s, ctx)
	itemID := createItem(t, s, ctx, &model.CreateItemRequest{Name: "Sticker", Price: 10, Stock: 10, MaxPerUser: 3})

	// A paused ledger rolls the whole redemption back.
	_, err := s.role.Pause(as(ctx, testutil.Admin), &model.PauseRequest{Module: "reward_ledger", Scope: ledgerID})
	require.NoError(t, err)

	_, err = s.redemption.Redeem(as(ctx, testutil.User1), &model.RedeemRequest{ItemID: itemID, Quantity: 1, LedgerID: ledgerID})
	require.True(t, errorx.Is(err, errorx.Paused), "got error %v", err)
	require.Equal(t, uint64(10), s.stockOf(t, ctx, itemID))
	require.Equal(t, uint64(300), s.balanceOf(t, ctx, ledgerID, testutil.User1))

	_, err = s.role.Pause(as(ctx, testutil.Admin), &model.PauseRequest{Module: "redemption"})
	require.NoError(t, err)

	_, err = s.redemption.Redeem(as(ctx, testutil.User1), &model.RedeemRequest{ItemID: itemID, Quantity: 1, LedgerID: ledgerID})
	require.True(t, errorx.Is(err, errorx.Paused), "got error %v", err)
}

func Test_redemptionDomain_RedeemReentrant(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	ledgerID := fundedLedger(t, s, ctx)
	itemID := createItem(t, s, ctx, &model.CreateItemRequest{Name: "Sticker", Price: 10, Stock: 10, MaxPerUser: 3})

	nested, err := xcontext.WithCallGuard(as(ctx, testutil.User1), redemptionGuard)
	require.NoError(t, err)

	_, err = s.redemption.Redeem(nested, &model.RedeemRequest{ItemID: itemID, Quantity: 1, LedgerID: ledgerID})
	require.True(t, errorx.Is(err, errorx.Reentrant), "got error %v", err)
}

func Test_redemptionDomain_UpdateStatus(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	ledgerID := fundedLedger(t, s, ctx)
	itemID := createItem(t, s, ctx, &model.CreateItemRequest{Name: "Sticker", Price: 10, Stock: 10, MaxPerUser: 5})
	fulfiller := as(ctx, testutil.Fulfiller1)

	redeem := func() string {
		resp, err := s.redemption.Redeem(as(ctx, testutil.User1),
			&model.RedeemRequest{ItemID: itemID, Quantity: 1, LedgerID: ledgerID})
		require.NoError(t, err)
		return resp.Order.ID
	}

	orderOf := func(id string) model.Redemption {
		resp, err := s.redemption.GetOrder(fulfiller, &model.GetOrderRequest{ID: id})
		require.NoError(t, err)
		return resp.Order
	}

	orderID := redeem()

	_, err := s.redemption.UpdateStatus(as(ctx, testutil.Organizer1),
		&model.UpdateOrderStatusRequest{ID: orderID, Status: "confirmed"})
	require.True(t, errorx.Is(err, errorx.PermissionDenied), "got error %v", err)

	_, err = s.redemption.UpdateStatus(fulfiller, &model.UpdateOrderStatusRequest{ID: orderID, Status: "lost"})
	require.True(t, errorx.Is(err, errorx.BadRequest), "got error %v", err)

	_, err = s.redemption.UpdateStatus(fulfiller, &model.UpdateOrderStatusRequest{ID: orderID, Status: "cancelled"})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	// Fulfillers may skip forward.
	_, err = s.redemption.UpdateStatus(fulfiller,
		&model.UpdateOrderStatusRequest{ID: orderID, Status: "shipped", TrackingInfo: "TRACK-1"})
	require.NoError(t, err)
	require.Equal(t, "shipped", orderOf(orderID).Status)
	require.Equal(t, "TRACK-1", orderOf(orderID).TrackingInfo)

	// A live order may move back, for example when a parcel returns.
	_, err = s.redemption.UpdateStatus(fulfiller, &model.UpdateOrderStatusRequest{ID: orderID, Status: "confirmed"})
	require.NoError(t, err)
	require.Equal(t, "confirmed", orderOf(orderID).Status)

	_, err = s.redemption.UpdateStatus(fulfiller, &model.UpdateOrderStatusRequest{ID: orderID, Status: "shipped"})
	require.NoError(t, err)

	_, err = s.redemption.UpdateStatus(fulfiller, &model.UpdateOrderStatusRequest{ID: orderID, Status: "pending"})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	_, err = s.redemption.Cancel(as(ctx, testutil.User1), &model.CancelOrderRequest{ID: orderID})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	_, err = s.redemption.UpdateStatus(fulfiller, &model.UpdateOrderStatusRequest{ID: orderID, Status: "delivered"})
	require.NoError(t, err)
	require.Equal(t, "TRACK-1", orderOf(orderID).TrackingInfo)

	// Delivered is terminal.
	_, err = s.redemption.UpdateStatus(fulfiller, &model.UpdateOrderStatusRequest{ID: orderID, Status: "confirmed"})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)

	cancelledID := redeem()
	_, err = s.redemption.Cancel(as(ctx, testutil.Organizer1), &model.CancelOrderRequest{ID: cancelledID})
	require.NoError(t, err)

	// Cancelled is terminal.
	_, err = s.redemption.UpdateStatus(fulfiller, &model.UpdateOrderStatusRequest{ID: cancelledID, Status: "confirmed"})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)
	require.Equal(t, "cancelled", orderOf(cancelledID).Status)
}

func Test_redemptionDomain_Cancel(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	ledgerID := fundedLedger(t, s, ctx)
	itemID := createItem(t, s, ctx, &model.CreateItemRequest{Name: "Sticker", Price: 100, Stock: 10, MaxPerUser: 1})

	resp, err := s.redemption.Redeem(as(ctx, testutil.User1),
		&model.RedeemRequest{ItemID: itemID, Quantity: 1, LedgerID: ledgerID})
	require.NoError(t, err)
	require.Equal(t, uint64(9), s.stockOf(t, ctx, itemID))
	require.Equal(t, uint64(200), s.balanceOf(t, ctx, ledgerID, testutil.User1))

	_, err = s.redemption.Cancel(as(ctx, testutil.User2), &model.CancelOrderRequest{ID: resp.Order.ID})
	require.True(t, errorx.Is(err, errorx.PermissionDenied), "got error %v", err)

	_, err = s.redemption.Cancel(as(ctx, testutil.User1), &model.CancelOrderRequest{ID: resp.Order.ID})
	require.NoError(t, err)

	// Stock and the per-user count come back, the credits do not.
	require.Equal(t, uint64(10), s.stockOf(t, ctx, itemID))
	require.Equal(t, uint64(200), s.balanceOf(t, ctx, ledgerID, testutil.User1))

	_, err = s.redemption.Redeem(as(ctx, testutil.User1),
		&model.RedeemRequest{ItemID: itemID, Quantity: 1, LedgerID: ledgerID})
	require.NoError(t, err)
	require.Equal(t, uint64(100), s.balanceOf(t, ctx, ledgerID, testutil.User1))

	_, err = s.redemption.Cancel(as(ctx, testutil.User1), &model.CancelOrderRequest{ID: resp.Order.ID})
	require.True(t, errorx.Is(err, errorx.FailedPrecondition), "got error %v", err)
}

func Test_redemptionDomain_GetOrders(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	ledgerID := fundedLedger(t, s, ctx)
	itemID := createItem(t, s, ctx, &model.CreateItemRequest{Name: "Sticker", Price: 10, Stock: 10, MaxPerUser: 5})

	resp, err := s.redemption.Redeem(as(ctx, testutil.User1),
		&model.RedeemRequest{ItemID: itemID, Quantity: 1, LedgerID: ledgerID})
	require.NoError(t, err)

	_, err = s.redemption.GetOrder(as(ctx, testutil.User1), &model.GetOrderRequest{ID: resp.Order.ID})
	require.NoError(t, err)

	_, err = s.redemption.GetOrder(as(ctx, testutil.User2), &model.GetOrderRequest{ID: resp.Order.ID})
	require.True(t, errorx.Is(err, errorx.PermissionDenied), "got error %v", err)

	orders, err := s.redemption.GetUserOrders(as(ctx, testutil.User1), &model.GetUserOrdersRequest{})
	require.NoError(t, err)
	require.Len(t, orders.Orders, 1)

	orders, err = s.redemption.GetUserOrders(as(ctx, testutil.Fulfiller1), &model.GetUserOrdersRequest{UserID: testutil.User1})
	require.NoError(t, err)
	require.Len(t, orders.Orders, 1)

	_, err = s.redemption.GetUserOrders(as(ctx, testutil.User2), &model.GetUserOrdersRequest{UserID: testutil.User1})
	require.True(t, errorx.Is(err, errorx.PermissionDenied), "got error %v", err)
}

func Test_redemptionDomain_RedeemConcurrentWithDebit(t *testing.T) {
	ctx := testutil.MockContext()
	s := newTestSuite(t)
	ledgerID := fundedLedger(t, s, ctx)
	itemID := createItem(t, s, ctx, &model.CreateItemRequest{Name: "Sticker", Price: 2, Stock: 100, MaxPerUser: 100})

	const workers = 40
	errs := make(chan error, 2*workers)
	wg := sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.redemption.Redeem(as(ctx, testutil.User1),
				&model.RedeemRequest{ItemID: itemID, Quantity: 1, LedgerID: ledgerID})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := s.ledger.Debit(as(ctx, testutil.Burner1),
				&model.DebitRequest{LedgerID: ledgerID, UserID: testutil.User1, Amount: 1, Reason: "fee"})
			errs <- err
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		require.FailNow(t, "concurrent redeem and debit on one account did not finish")
	}

	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, uint64(300-workers*2-workers), s.balanceOf(t, ctx, ledgerID, testutil.User1))
	require.Equal(t, uint64(100-workers), s.stockOf(t, ctx, itemID))
}
