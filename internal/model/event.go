package model

import "time"

type CreateEventRequest struct {
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Location             string    `json:"location"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time"`
	VotingStart          time.Time `json:"voting_start"`
	VotingEnd            time.Time `json:"voting_end"`
	Capacity             uint64    `json:"capacity"`
	RequiresRegistration bool      `json:"requires_registration"`
	AttendanceReward     uint64    `json:"attendance_reward"`
	SurveyReward         uint64    `json:"survey_reward"`
	CategoryIDs          []string  `json:"category_ids"`
}

type CreateEventResponse struct {
	ID             string `json:"id"`
	RewardLedgerID string `json:"reward_ledger_id"`
	Fingerprint    string `json:"fingerprint"`
}

type UpdateEventRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Capacity    uint64 `json:"capacity"`
}

type UpdateEventResponse struct{}

type ActivateEventRequest struct {
	EventID string `json:"event_id"`
}

type ActivateEventResponse struct{}

type OpenVotingRequest struct {
	EventID string `json:"event_id"`
}

type OpenVotingResponse struct{}

type CloseVotingRequest struct {
	EventID string `json:"event_id"`
}

type CloseVotingResponse struct{}

type CompleteEventRequest struct {
	EventID string `json:"event_id"`
}

type CompleteEventResponse struct{}

type CancelEventRequest struct {
	EventID string `json:"event_id"`
}

type CancelEventResponse struct{}

type RegisterRequest struct {
	EventID string `json:"event_id"`
}

type RegisterResponse struct{}

type UnregisterRequest struct {
	EventID string `json:"event_id"`
}

type UnregisterResponse struct{}

type MarkAttendanceRequest struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
}

type MarkAttendanceResponse struct{}

type BatchMarkAttendanceRequest struct {
	EventID string   `json:"event_id"`
	UserIDs []string `json:"user_ids"`
}

type BatchMarkAttendanceResponse struct {
	Marked  []string         `json:"marked"`
	Skipped []SkippedAccount `json:"skipped"`
}

type GetEventRequest struct {
	EventID string `json:"event_id" form:"event_id"`
}

type GetEventResponse struct {
	Event Event `json:"event"`
}

type IsRegisteredRequest struct {
	EventID string `json:"event_id" form:"event_id"`
	UserID  string `json:"user_id" form:"user_id"`
}

type IsRegisteredResponse struct {
	Registered bool `json:"registered"`
}

type HasAttendedRequest struct {
	EventID string `json:"event_id" form:"event_id"`
	UserID  string `json:"user_id" form:"user_id"`
}

type HasAttendedResponse struct {
	Attended bool `json:"attended"`
}

type GetActiveEventsRequest struct {
	Offset int `json:"offset" form:"offset"`
	Limit  int `json:"limit" form:"limit"`
}

type GetActiveEventsResponse struct {
	Events []Event `json:"events"`
}

type GetUpcomingEventsRequest struct {
	Offset int `json:"offset" form:"offset"`
	Limit  int `json:"limit" form:"limit"`
}

type GetUpcomingEventsResponse struct {
	Events []Event `json:"events"`
}

type CanVoteRequest struct {
	EventID string `json:"event_id" form:"event_id"`
	UserID  string `json:"user_id" form:"user_id"`
}

type CanVoteResponse struct {
	CanVote bool `json:"can_vote"`
}

type GetParticipantsRequest struct {
	EventID string `json:"event_id" form:"event_id"`
	Offset  int    `json:"offset" form:"offset"`
	Limit   int    `json:"limit" form:"limit"`
}

type GetParticipantsResponse struct {
	Participants []Participant `json:"participants"`
}
