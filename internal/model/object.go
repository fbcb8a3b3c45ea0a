package model

type AccessToken struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Event struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	Location             string `json:"location"`
	OrganizerID          string `json:"organizer_id"`
	StartTime            string `json:"start_time"`
	EndTime              string `json:"end_time"`
	VotingStart          string `json:"voting_start"`
	VotingEnd            string `json:"voting_end"`
	Capacity             uint64 `json:"capacity"`
	RequiresRegistration bool   `json:"requires_registration"`
	Status               string `json:"status"`
	RegisteredCount      uint64 `json:"registered_count"`
	ParticipantCount     uint64 `json:"participant_count"`
	AttendeeCount        uint64 `json:"attendee_count"`
	Fingerprint          string `json:"fingerprint"`
	RewardLedgerID       string `json:"reward_ledger_id"`
	CreatedAt            string `json:"created_at"`
}

type Participant struct {
	UserID       string `json:"user_id"`
	Registered   bool   `json:"registered"`
	Attended     bool   `json:"attended"`
	RegisteredAt string `json:"registered_at,omitempty"`
	AttendedAt   string `json:"attended_at,omitempty"`
}

type SkippedAccount struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

type LedgerEntry struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Amount     uint64 `json:"amount"`
	Reason     string `json:"reason"`
	OperatorID string `json:"operator_id"`
	CreatedAt  string `json:"created_at"`
}

type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	Earned uint64 `json:"earned"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
	TotalVotes  uint64 `json:"total_votes"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   string `json:"created_at"`
}

type CategoryResult struct {
	CategoryID    string    `json:"category_id"`
	Name          string    `json:"name"`
	AverageRating uint64    `json:"average_rating"`
	TotalVotes    uint64    `json:"total_votes"`
	Distribution  [5]uint64 `json:"distribution"`
}

type VoteReceipt struct {
	CategoryID string `json:"category_id"`
	Commitment string `json:"commitment"`
	Salt       string `json:"salt"`
}

type MerchItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	Category    string   `json:"category"`
	Price       uint64   `json:"price"`
	Stock       uint64   `json:"stock"`
	MaxPerUser  uint64   `json:"max_per_user"`
	Active      bool     `json:"active"`
	Sizes       []string `json:"sizes"`
}

type Redemption struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	ItemID       string `json:"item_id"`
	Quantity     uint64 `json:"quantity"`
	Size         string `json:"size"`
	CreditsSpent uint64 `json:"credits_spent"`
	Status       string `json:"status"`
	TrackingInfo string `json:"tracking_info"`
	LedgerID     string `json:"ledger_id"`
	CreatedAt    string `json:"created_at"`
}

type Pause struct {
	Module    string `json:"module"`
	Scope     string `json:"scope"`
	UpdatedBy string `json:"updated_by"`
	UpdatedAt string `json:"updated_at"`
}
