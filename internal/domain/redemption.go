package domain

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/questx-lab/eventreward/internal/common"
	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/internal/model"
	"github.com/questx-lab/eventreward/internal/repository"
	"github.com/questx-lab/eventreward/pkg/enum"
	"github.com/questx-lab/eventreward/pkg/errorx"
	"github.com/questx-lab/eventreward/pkg/pubsub"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

const redemptionGuard = "redemption"

type RedemptionDomain interface {
	CreateItem(context.Context, *model.CreateItemRequest) (*model.CreateItemResponse, error)
	UpdateItem(context.Context, *model.UpdateItemRequest) (*model.UpdateItemResponse, error)
	UpdateStock(context.Context, *model.UpdateStockRequest) (*model.UpdateStockResponse, error)
	ToggleActive(context.Context, *model.ToggleItemActiveRequest) (*model.ToggleItemActiveResponse, error)
	AddSupportedLedger(context.Context, *model.AddSupportedLedgerRequest) (*model.AddSupportedLedgerResponse, error)
	RemoveSupportedLedger(context.Context, *model.RemoveSupportedLedgerRequest) (*model.RemoveSupportedLedgerResponse, error)

	Redeem(context.Context, *model.RedeemRequest) (*model.RedeemResponse, error)
	UpdateStatus(context.Context, *model.UpdateOrderStatusRequest) (*model.UpdateOrderStatusResponse, error)
	Cancel(context.Context, *model.CancelOrderRequest) (*model.CancelOrderResponse, error)

	GetItem(context.Context, *model.GetItemRequest) (*model.GetItemResponse, error)
	GetItems(context.Context, *model.GetItemsRequest) (*model.GetItemsResponse, error)
	GetOrder(context.Context, *model.GetOrderRequest) (*model.GetOrderResponse, error)
	GetUserOrders(context.Context, *model.GetUserOrdersRequest) (*model.GetUserOrdersResponse, error)
}

type redemptionDomain struct {
	itemRepo       repository.MerchItemRepository
	redemptionRepo repository.RedemptionRepository
	ledgerDomain   RewardLedgerDomain
	roleVerifier   *common.RoleVerifier
	pauseGuard     *common.PauseGuard
	writerLock     *common.WriterLock
	publisher      pubsub.Publisher
}

func NewRedemptionDomain(
	itemRepo repository.MerchItemRepository,
	redemptionRepo repository.RedemptionRepository,
	ledgerDomain RewardLedgerDomain,
	roleVerifier *common.RoleVerifier,
	pauseGuard *common.PauseGuard,
	writerLock *common.WriterLock,
	publisher pubsub.Publisher,
) *redemptionDomain {
	return &redemptionDomain{
		itemRepo:       itemRepo,
		redemptionRepo: redemptionRepo,
		ledgerDomain:   ledgerDomain,
		roleVerifier:   roleVerifier,
		pauseGuard:     pauseGuard,
		writerLock:     writerLock,
		publisher:      publisher,
	}
}

type redemptionMessage struct {
	OrderID  string `json:"order_id"`
	UserID   string `json:"user_id"`
	ItemID   string `json:"item_id"`
	Quantity uint64 `json:"quantity"`
	Status   string `json:"status"`
}

// fulfillmentStatuses are the statuses a fulfiller may move an order between.
var fulfillmentStatuses = []entity.RedemptionStatus{
	entity.RedemptionPending,
	entity.RedemptionConfirmed,
	entity.RedemptionShipped,
}

func (d *redemptionDomain) CreateItem(
	ctx context.Context, req *model.CreateItemRequest,
) (*model.CreateItemResponse, error) {
	if err := d.verifyOrganizer(ctx); err != nil {
		return nil, err
	}

	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	if req.Price == 0 {
		return nil, errorx.New(errorx.BadRequest, "Price must be positive")
	}

	if req.MaxPerUser == 0 {
		return nil, errorx.New(errorx.BadRequest, "Max per user must be positive")
	}

	item := &entity.MerchItem{
		Base:        entity.Base{ID: uuid.NewString()},
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		MaxPerUser:  req.MaxPerUser,
		Active:      true,
		Sizes:       req.Sizes,
		CreatedBy:   xcontext.RequestUserID(ctx),
	}

	if err := d.itemRepo.Create(ctx, item); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create item: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateItemResponse{ID: item.ID}, nil
}

func (d *redemptionDomain) UpdateItem(
	ctx context.Context, req *model.UpdateItemRequest,
) (*model.UpdateItemResponse, error) {
	if err := d.verifyOrganizer(ctx); err != nil {
		return nil, err
	}

	item, err := d.getItem(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if req.Name != "" {
		changes["name"] = req.Name
	}

	if req.Description != "" {
		changes["description"] = req.Description
	}

	if req.ImageURL != "" {
		changes["image_url"] = req.ImageURL
	}

	if req.Category != "" {
		changes["category"] = req.Category
	}

	if req.Price != 0 {
		changes["price"] = req.Price
	}

	if req.MaxPerUser != 0 {
		changes["max_per_user"] = req.MaxPerUser
	}

	if req.Sizes != nil {
		changes["sizes"] = entity.Array[string](req.Sizes)
	}

	if len(changes) == 0 {
		return &model.UpdateItemResponse{}, nil
	}

	ctx, unlock := d.writerLock.Lock(ctx, common.LockKeyItem(item.ID))
	defer unlock()

	if err := d.itemRepo.UpdateByID(ctx, item.ID, changes); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update item: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateItemResponse{}, nil
}

func (d *redemptionDomain) UpdateStock(
	ctx context.Context, req *model.UpdateStockRequest,
) (*model.UpdateStockResponse, error) {
	if err := d.verifyOrganizer(ctx); err != nil {
		return nil, err
	}

	item, err := d.getItem(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	ctx, unlock := d.writerLock.Lock(ctx, common.LockKeyItem(item.ID))
	defer unlock()

	if err := d.itemRepo.UpdateByID(ctx, item.ID, map[string]any{"stock": req.Stock}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update stock: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateStockResponse{}, nil
}

func (d *redemptionDomain) ToggleActive(
	ctx context.Context, req *model.ToggleItemActiveRequest,
) (*model.ToggleItemActiveResponse, error) {
	if err := d.verifyOrganizer(ctx); err != nil {
		return nil, err
	}

	ctx, unlock := d.writerLock.Lock(ctx, common.LockKeyItem(req.ID))
	defer unlock()

	item, err := d.getItem(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := d.itemRepo.UpdateByID(ctx, item.ID, map[string]any{"active": !item.Active}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot toggle item: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ToggleItemActiveResponse{Active: !item.Active}, nil
}

func (d *redemptionDomain) AddSupportedLedger(
	ctx context.Context, req *model.AddSupportedLedgerRequest,
) (*model.AddSupportedLedgerResponse, error) {
	if err := d.verifyOrganizer(ctx); err != nil {
		return nil, err
	}

	if req.LedgerID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty ledger")
	}

	err := d.redemptionRepo.AddSupportedLedger(ctx, &entity.SupportedLedger{
		LedgerID: req.LedgerID,
		AddedBy:  xcontext.RequestUserID(ctx),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add supported ledger: %v", err)
		return nil, errorx.Unknown
	}

	return &model.AddSupportedLedgerResponse{}, nil
}

func (d *redemptionDomain) RemoveSupportedLedger(
	ctx context.Context, req *model.RemoveSupportedLedgerRequest,
) (*model.RemoveSupportedLedgerResponse, error) {
	if err := d.verifyOrganizer(ctx); err != nil {
		return nil, err
	}

	if err := d.redemptionRepo.RemoveSupportedLedger(ctx, req.LedgerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Ledger is not supported")
		}

		xcontext.Logger(ctx).Errorf("Cannot remove supported ledger: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RemoveSupportedLedgerResponse{}, nil
}

// Redeem debits the price of the items and reserves them in one atomic unit.
func (d *redemptionDomain) Redeem(ctx context.Context, req *model.RedeemRequest) (*model.RedeemResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Need to login")
	}

	if req.Quantity == 0 {
		return nil, errorx.New(errorx.BadRequest, "Quantity must be positive")
	}

	ctx, err := xcontext.WithCallGuard(ctx, redemptionGuard)
	if err != nil {
		return nil, err
	}

	if err := d.pauseGuard.Guard(ctx, entity.RedemptionModule, req.ItemID); err != nil {
		return nil, err
	}

	supported, err := d.redemptionRepo.IsSupportedLedger(ctx, req.LedgerID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check supported ledger: %v", err)
		return nil, errorx.Unknown
	}

	if !supported {
		return nil, errorx.New(errorx.FailedPrecondition, "Ledger is not supported")
	}

	// The debit nests inside the transaction below, so its account lock is
	// taken here together with the item.
	ctx, unlock := d.writerLock.Lock(ctx,
		common.LockKeyItem(req.ItemID), common.LockKeyLedgerAccount(req.LedgerID, userID))
	defer unlock()

	item, err := d.getItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	if !item.Active {
		return nil, errorx.New(errorx.FailedPrecondition, "Item is inactive")
	}

	if item.Stock < req.Quantity {
		return nil, errorx.New(errorx.ResourceExhausted, "Insufficient stock")
	}

	redeemed, err := d.itemRepo.GetRedemptionCount(ctx, userID, item.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get redemption count: %v", err)
		return nil, errorx.Unknown
	}

	if redeemed+req.Quantity > item.MaxPerUser {
		return nil, errorx.New(errorx.ResourceExhausted, "Exceed max %d per user", item.MaxPerUser)
	}

	size := ""
	if len(item.Sizes) > 0 {
		if !slices.Contains(item.Sizes, req.Size) {
			return nil, errorx.New(errorx.BadRequest, "Invalid size %q", req.Size)
		}

		size = req.Size
	}

	if req.Quantity > math.MaxUint64/item.Price {
		return nil, errorx.New(errorx.BadRequest, "Quantity is too large")
	}
	cost := item.Price * req.Quantity

	balance, err := d.ledgerDomain.GetBalance(ctx, &model.GetBalanceRequest{LedgerID: req.LedgerID, UserID: userID})
	if err != nil {
		return nil, err
	}

	if balance.Balance < cost {
		return nil, errorx.New(errorx.ResourceExhausted, "Insufficient balance")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	_, err = d.ledgerDomain.Debit(
		asServiceAccount(ctx, xcontext.Configs(ctx).ServiceAccounts.Redemption),
		&model.DebitRequest{
			LedgerID: req.LedgerID,
			UserID:   userID,
			Amount:   cost,
			Reason:   fmt.Sprintf("Redeem %d x %s", req.Quantity, item.Name),
		},
	)
	if err != nil {
		return nil, err
	}

	if err := d.itemRepo.DecreaseStock(ctx, item.ID, req.Quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.ResourceExhausted, "Insufficient stock")
		}

		xcontext.Logger(ctx).Errorf("Cannot decrease stock: %v", err)
		return nil, errorx.Unknown
	}

	err = d.itemRepo.IncreaseRedemptionCount(ctx, userID, item.ID, req.Quantity, item.MaxPerUser)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.ResourceExhausted, "Exceed max %d per user", item.MaxPerUser)
		}

		xcontext.Logger(ctx).Errorf("Cannot increase redemption count: %v", err)
		return nil, errorx.Unknown
	}

	order := &entity.Redemption{
		Base:         entity.Base{ID: uuid.NewString(), CreatedAt: xcontext.Now(ctx)},
		UserID:       userID,
		ItemID:       item.ID,
		Quantity:     req.Quantity,
		Size:         size,
		CreditsSpent: cost,
		Status:       entity.RedemptionPending,
		LedgerID:     req.LedgerID,
	}

	if err := d.redemptionRepo.Create(ctx, order); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create order: %v", err)
		return nil, errorx.Unknown
	}

	d.afterStatusChange(ctx, order, order.Status)
	if err := xcontext.CommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RedeemResponse{Order: model.ConvertRedemption(order)}, nil
}

// UpdateStatus sets a live order to confirmed, shipped or delivered. Pending
// can never be set again and delivered or cancelled orders never change.
func (d *redemptionDomain) UpdateStatus(
	ctx context.Context, req *model.UpdateOrderStatusRequest,
) (*model.UpdateOrderStatusResponse, error) {
	if err := d.roleVerifier.Verify(ctx, entity.FulfillerRole); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if err := d.pauseGuard.Guard(ctx, entity.RedemptionModule); err != nil {
		return nil, err
	}

	status, err := enum.ToEnum[entity.RedemptionStatus](req.Status)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid status: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid status %s", req.Status)
	}

	if status == entity.RedemptionPending || status == entity.RedemptionCancelled {
		return nil, errorx.New(errorx.FailedPrecondition, "Cannot move an order to %s", status)
	}

	ctx, unlock := d.writerLock.Lock(ctx, common.LockKeyOrder(req.ID))
	defer unlock()

	order, err := d.getOrder(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(fulfillmentStatuses, order.Status) {
		return nil, errorx.New(errorx.FailedPrecondition, "Order is already %s", order.Status)
	}

	err = d.redemptionRepo.UpdateStatus(ctx, order.ID, fulfillmentStatuses, status, req.TrackingInfo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.FailedPrecondition, "Order status has changed")
		}

		xcontext.Logger(ctx).Errorf("Cannot update order status: %v", err)
		return nil, errorx.Unknown
	}

	d.afterStatusChange(ctx, order, status)
	return &model.UpdateOrderStatusResponse{}, nil
}

// Cancel returns the reserved stock of a pending order. The spent credits are
// not refunded.
func (d *redemptionDomain) Cancel(ctx context.Context, req *model.CancelOrderRequest) (*model.CancelOrderResponse, error) {
	ctx, err := xcontext.WithCallGuard(ctx, redemptionGuard)
	if err != nil {
		return nil, err
	}

	if err := d.pauseGuard.Guard(ctx, entity.RedemptionModule); err != nil {
		return nil, err
	}

	order, err := d.getOrder(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := d.roleVerifier.VerifyOwnerOr(ctx, order.UserID, entity.OrganizerRole); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	ctx, unlock := d.writerLock.Lock(ctx, common.LockKeyItem(order.ItemID), common.LockKeyOrder(order.ID))
	defer unlock()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err = d.redemptionRepo.UpdateStatus(ctx, order.ID,
		[]entity.RedemptionStatus{entity.RedemptionPending}, entity.RedemptionCancelled, "")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.FailedPrecondition, "Only a pending order can be cancelled")
		}

		xcontext.Logger(ctx).Errorf("Cannot cancel order: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.itemRepo.IncreaseStock(ctx, order.ItemID, order.Quantity); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot restore stock: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.itemRepo.DecreaseRedemptionCount(ctx, order.UserID, order.ItemID, order.Quantity); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot restore redemption count: %v", err)
		return nil, errorx.Unknown
	}

	d.afterStatusChange(ctx, order, entity.RedemptionCancelled)
	if err := xcontext.CommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CancelOrderResponse{}, nil
}

func (d *redemptionDomain) afterStatusChange(
	ctx context.Context, order *entity.Redemption, status entity.RedemptionStatus,
) {
	publishAfterCommit(ctx, d.publisher, xcontext.Configs(ctx).Kafka.RedemptionTopic, order.ID, redemptionMessage{
		OrderID:  order.ID,
		UserID:   order.UserID,
		ItemID:   order.ItemID,
		Quantity: order.Quantity,
		Status:   string(status),
	})

	xcontext.AfterCommit(ctx, func() {
		common.IncCounter(common.RedemptionTotal, string(status))
	})
}

func (d *redemptionDomain) GetItem(ctx context.Context, req *model.GetItemRequest) (*model.GetItemResponse, error) {
	item, err := d.getItem(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	return &model.GetItemResponse{Item: model.ConvertMerchItem(item)}, nil
}

func (d *redemptionDomain) GetItems(ctx context.Context, req *model.GetItemsRequest) (*model.GetItemsResponse, error) {
	offset, limit, err := paginate(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	items, err := d.itemRepo.GetList(ctx, req.IncludeInactive, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get items: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.MerchItem{}
	for i := range items {
		result = append(result, model.ConvertMerchItem(&items[i]))
	}

	return &model.GetItemsResponse{Items: result}, nil
}

func (d *redemptionDomain) GetOrder(ctx context.Context, req *model.GetOrderRequest) (*model.GetOrderResponse, error) {
	order, err := d.getOrder(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	err = d.roleVerifier.VerifyOwnerOr(ctx, order.UserID, entity.OrganizerRole, entity.FulfillerRole)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	return &model.GetOrderResponse{Order: model.ConvertRedemption(order)}, nil
}

func (d *redemptionDomain) GetUserOrders(
	ctx context.Context, req *model.GetUserOrdersRequest,
) (*model.GetUserOrdersResponse, error) {
	userID := requestUserOr(ctx, req.UserID)
	err := d.roleVerifier.VerifyOwnerOr(ctx, userID, entity.OrganizerRole, entity.FulfillerRole)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	offset, limit, err := paginate(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	orders, err := d.redemptionRepo.GetListByUserID(ctx, userID, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get orders: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Redemption{}
	for i := range orders {
		result = append(result, model.ConvertRedemption(&orders[i]))
	}

	return &model.GetUserOrdersResponse{Orders: result}, nil
}

func (d *redemptionDomain) verifyOrganizer(ctx context.Context) error {
	if err := d.roleVerifier.Verify(ctx, entity.OrganizerRole); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	return d.pauseGuard.Guard(ctx, entity.RedemptionModule)
}

func (d *redemptionDomain) getItem(ctx context.Context, id string) (*entity.MerchItem, error) {
	item, err := d.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found item")
		}

		xcontext.Logger(ctx).Errorf("Cannot get item: %v", err)
		return nil, errorx.Unknown
	}

	return item, nil
}

func (d *redemptionDomain) getOrder(ctx context.Context, id string) (*entity.Redemption, error) {
	order, err := d.redemptionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found order")
		}

		xcontext.Logger(ctx).Errorf("Cannot get order: %v", err)
		return nil, errorx.Unknown
	}

	return order, nil
}
