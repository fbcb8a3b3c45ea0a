package entity

import (
	"database/sql"
	"time"

	"github.com/questx-lab/eventreward/pkg/enum"
)

type EventStatus string

var (
	EventCreated      = enum.New(EventStatus("created"))
	EventActive       = enum.New(EventStatus("active"))
	EventVotingOpen   = enum.New(EventStatus("voting_open"))
	EventVotingClosed = enum.New(EventStatus("voting_closed"))
	EventCompleted    = enum.New(EventStatus("completed"))
	EventCancelled    = enum.New(EventStatus("cancelled"))
)

type Event struct {
	Base

	Name        string
	Description string
	Location    string
	OrganizerID string `gorm:"index"`

	StartTime   time.Time
	EndTime     time.Time
	VotingStart time.Time
	VotingEnd   time.Time

	Capacity             uint64
	RequiresRegistration bool
	Status               EventStatus `gorm:"index"`

	// RegisteredCount counts registrations, ParticipantCount counts every
	// known participant (registered or walk-in attendee).
	RegisteredCount  uint64
	ParticipantCount uint64
	AttendeeCount    uint64

	Fingerprint    string
	RewardLedgerID string
}

type EventParticipant struct {
	EventID string `gorm:"primaryKey"`
	UserID  string `gorm:"primaryKey"`

	Registered   bool
	Attended     bool
	RegisteredAt sql.NullTime
	AttendedAt   sql.NullTime
}
