package entity

import (
	"time"

	"github.com/questx-lab/eventreward/pkg/enum"
)

type Module string

var (
	EventModule        = enum.New(Module("event"))
	RewardLedgerModule = enum.New(Module("reward_ledger"))
	VotingModule       = enum.New(Module("voting"))
	RedemptionModule   = enum.New(Module("redemption"))
)

// Pause stores the paused flag of a module. ID is the module name, or
// "module:scope" to pause a single instance of it.
type Pause struct {
	ID        string `gorm:"primaryKey"`
	Paused    bool
	UpdatedBy string
	UpdatedAt time.Time
}

func PauseKey(module Module, scope string) string {
	if scope == "" {
		return string(module)
	}

	return string(module) + ":" + scope
}
