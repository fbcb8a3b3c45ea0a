package model

type CreateLedgerRequest struct {
	EventID          string `json:"event_id"`
	AttendanceReward uint64 `json:"attendance_reward"`
	SurveyReward     uint64 `json:"survey_reward"`
}

type CreateLedgerResponse struct {
	ID string `json:"id"`
}

type CreditAttendanceRequest struct {
	LedgerID string `json:"ledger_id"`
	UserID   string `json:"user_id"`
}

type CreditAttendanceResponse struct {
	Balance uint64 `json:"balance"`
}

type CreditSurveyRequest struct {
	LedgerID string `json:"ledger_id"`
	UserID   string `json:"user_id"`
}

type CreditSurveyResponse struct {
	Balance uint64 `json:"balance"`
}

type DebitRequest struct {
	LedgerID string `json:"ledger_id"`
	UserID   string `json:"user_id"`
	Amount   uint64 `json:"amount"`
	Reason   string `json:"reason"`
}

type DebitResponse struct {
	Balance uint64 `json:"balance"`
}

type GetProgressRequest struct {
	LedgerID string `json:"ledger_id" form:"ledger_id"`
	UserID   string `json:"user_id" form:"user_id"`
}

type GetProgressResponse struct {
	AttendanceClaimed bool   `json:"attendance_claimed"`
	SurveyClaimed     bool   `json:"survey_claimed"`
	Balance           uint64 `json:"balance"`
	MaxObtainable     uint64 `json:"max_obtainable"`
}

type GetBalanceRequest struct {
	LedgerID string `json:"ledger_id" form:"ledger_id"`
	UserID   string `json:"user_id" form:"user_id"`
}

type GetBalanceResponse struct {
	Balance uint64 `json:"balance"`
}

type GetLedgerEntriesRequest struct {
	LedgerID string `json:"ledger_id" form:"ledger_id"`
	UserID   string `json:"user_id" form:"user_id"`
	Offset   int    `json:"offset" form:"offset"`
	Limit    int    `json:"limit" form:"limit"`
}

type GetLedgerEntriesResponse struct {
	Entries []LedgerEntry `json:"entries"`
}

type GetLedgerLeaderboardRequest struct {
	LedgerID string `json:"ledger_id" form:"ledger_id"`
	Limit    int    `json:"limit" form:"limit"`
}

type GetLedgerLeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}
