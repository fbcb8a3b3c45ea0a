package entity

import (
	"time"

	"github.com/questx-lab/eventreward/pkg/enum"
)

type RedemptionStatus string

var (
	RedemptionPending   = enum.New(RedemptionStatus("pending"))
	RedemptionConfirmed = enum.New(RedemptionStatus("confirmed"))
	RedemptionShipped   = enum.New(RedemptionStatus("shipped"))
	RedemptionDelivered = enum.New(RedemptionStatus("delivered"))
	RedemptionCancelled = enum.New(RedemptionStatus("cancelled"))
)

type MerchItem struct {
	Base

	Name        string
	Description string
	ImageURL    string
	Category    string
	Price       uint64
	Stock       uint64
	MaxPerUser  uint64
	Active      bool
	Sizes       Array[string]
	CreatedBy   string
}

type ItemRedemptionCount struct {
	UserID   string `gorm:"primaryKey"`
	ItemID   string `gorm:"primaryKey"`
	Quantity uint64
}

type SupportedLedger struct {
	LedgerID  string `gorm:"primaryKey"`
	AddedBy   string
	CreatedAt time.Time
}

type Redemption struct {
	Base

	UserID       string `gorm:"index"`
	ItemID       string `gorm:"index"`
	Quantity     uint64
	Size         string
	CreditsSpent uint64
	Status       RedemptionStatus
	TrackingInfo string
	LedgerID     string
}
