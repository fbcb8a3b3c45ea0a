package model

type CreateItemRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	Category    string   `json:"category"`
	Price       uint64   `json:"price"`
	Stock       uint64   `json:"stock"`
	MaxPerUser  uint64   `json:"max_per_user"`
	Sizes       []string `json:"sizes"`
}

type CreateItemResponse struct {
	ID string `json:"id"`
}

type UpdateItemRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	Category    string   `json:"category"`
	Price       uint64   `json:"price"`
	MaxPerUser  uint64   `json:"max_per_user"`
	Sizes       []string `json:"sizes"`
}

type UpdateItemResponse struct{}

type UpdateStockRequest struct {
	ID    string `json:"id"`
	Stock uint64 `json:"stock"`
}

type UpdateStockResponse struct{}

type ToggleItemActiveRequest struct {
	ID string `json:"id"`
}

type ToggleItemActiveResponse struct {
	Active bool `json:"active"`
}

type AddSupportedLedgerRequest struct {
	LedgerID string `json:"ledger_id"`
}

type AddSupportedLedgerResponse struct{}

type RemoveSupportedLedgerRequest struct {
	LedgerID string `json:"ledger_id"`
}

type RemoveSupportedLedgerResponse struct{}

type RedeemRequest struct {
	ItemID   string `json:"item_id"`
	Quantity uint64 `json:"quantity"`
	Size     string `json:"size"`
	LedgerID string `json:"ledger_id"`
}

type RedeemResponse struct {
	Order Redemption `json:"order"`
}

type UpdateOrderStatusRequest struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	TrackingInfo string `json:"tracking_info"`
}

type UpdateOrderStatusResponse struct{}

type CancelOrderRequest struct {
	ID string `json:"id"`
}

type CancelOrderResponse struct{}

type GetItemRequest struct {
	ID string `json:"id" form:"id"`
}

type GetItemResponse struct {
	Item MerchItem `json:"item"`
}

type GetItemsRequest struct {
	IncludeInactive bool `json:"include_inactive" form:"include_inactive"`
	Offset          int  `json:"offset" form:"offset"`
	Limit           int  `json:"limit" form:"limit"`
}

type GetItemsResponse struct {
	Items []MerchItem `json:"items"`
}

type GetOrderRequest struct {
	ID string `json:"id" form:"id"`
}

type GetOrderResponse struct {
	Order Redemption `json:"order"`
}

type GetUserOrdersRequest struct {
	UserID string `json:"user_id" form:"user_id"`
	Offset int    `json:"offset" form:"offset"`
	Limit  int    `json:"limit" form:"limit"`
}

type GetUserOrdersResponse struct {
	Orders []Redemption `json:"orders"`
}
