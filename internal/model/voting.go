package model

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreateCategoryResponse struct {
	ID string `json:"id"`
}

type ToggleCategoryRequest struct {
	ID string `json:"id"`
}

type ToggleCategoryResponse struct {
	Active bool `json:"active"`
}

type GetCategoryRequest struct {
	ID string `json:"id" form:"id"`
}

type GetCategoryResponse struct {
	Category Category `json:"category"`
}

type GetCategoriesRequest struct {
	IncludeInactive bool `json:"include_inactive" form:"include_inactive"`
}

type GetCategoriesResponse struct {
	Categories []Category `json:"categories"`
}

type AddEventCategoriesRequest struct {
	EventID     string   `json:"event_id"`
	CategoryIDs []string `json:"category_ids"`
}

type AddEventCategoriesResponse struct{}

type VoteRequest struct {
	EventID    string `json:"event_id"`
	CategoryID string `json:"category_id"`
	Rating     int    `json:"rating"`
}

type VoteResponse struct {
	Receipt VoteReceipt `json:"receipt"`
}

type BatchVoteRequest struct {
	EventID     string   `json:"event_id"`
	CategoryIDs []string `json:"category_ids"`
	Ratings     []int    `json:"ratings"`
}

type BatchVoteResponse struct {
	Receipts []VoteReceipt `json:"receipts"`

	// Completed is true when the voter has rated every category of the event.
	Completed bool `json:"completed"`
}

type GetCategoryResultsRequest struct {
	EventID string `json:"event_id" form:"event_id"`
}

type GetCategoryResultsResponse struct {
	Results []CategoryResult `json:"results"`
}

type GetRatingDistributionRequest struct {
	CategoryID string `json:"category_id" form:"category_id"`
}

type GetRatingDistributionResponse struct {
	Distribution [5]uint64 `json:"distribution"`
	TotalVotes   uint64    `json:"total_votes"`
}

type GetAverageRatingRequest struct {
	CategoryID string `json:"category_id" form:"category_id"`
}

type GetAverageRatingResponse struct {
	AverageRating uint64 `json:"average_rating"`
	Precision     uint64 `json:"precision"`
}

type HasVotedRequest struct {
	EventID string `json:"event_id" form:"event_id"`
	UserID  string `json:"user_id" form:"user_id"`
}

type HasVotedResponse struct {
	Voted bool `json:"voted"`
}

type HasVotedCategoryRequest struct {
	EventID    string `json:"event_id" form:"event_id"`
	UserID     string `json:"user_id" form:"user_id"`
	CategoryID string `json:"category_id" form:"category_id"`
}

type HasVotedCategoryResponse struct {
	Voted bool `json:"voted"`
}
