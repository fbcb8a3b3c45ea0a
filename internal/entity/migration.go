package entity

import (
	"context"

	"github.com/questx-lab/eventreward/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&RoleGrant{},
		&Pause{},
		&Event{},
		&EventParticipant{},
		&RewardLedger{},
		&LedgerAccount{},
		&LedgerEntry{},
		&Category{},
		&Ballot{},
		&BallotCategory{},
		&BallotVoter{},
		&VoteRecord{},
		&VoteCommitment{},
		&MerchItem{},
		&ItemRedemptionCount{},
		&SupportedLedger{},
		&Redemption{},
	)
}
