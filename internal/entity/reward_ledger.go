package entity

import "github.com/questx-lab/eventreward/pkg/enum"

type LedgerEntryKind string

var (
	AttendanceCredit = enum.New(LedgerEntryKind("attendance_credit"))
	SurveyCredit     = enum.New(LedgerEntryKind("survey_credit"))
	Debit            = enum.New(LedgerEntryKind("debit"))
)

type RewardLedger struct {
	Base

	EventID          string `gorm:"index"`
	AttendanceReward uint64
	SurveyReward     uint64
	CreatedBy        string
}

// LedgerAccount is the per-account state of a ledger. The balance only moves
// through credits and debits, there is no transfer between accounts.
type LedgerAccount struct {
	LedgerID string `gorm:"primaryKey"`
	UserID   string `gorm:"primaryKey"`

	AttendanceClaimed bool
	SurveyClaimed     bool
	Balance           uint64
	TotalEarned       uint64
	TotalSpent        uint64
}

type LedgerEntry struct {
	SnowFlakeBase

	LedgerID   string `gorm:"index"`
	UserID     string `gorm:"index"`
	Kind       LedgerEntryKind
	Amount     uint64
	Reason     string
	OperatorID string
}
