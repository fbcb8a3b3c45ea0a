package entity

import "time"

type Category struct {
	Base

	Name        string
	Description string
	Active      bool
	CreatedBy   string

	TotalVotes uint64
	Rating1    uint64
	Rating2    uint64
	Rating3    uint64
	Rating4    uint64
	Rating5    uint64
}

// Distribution returns the histogram indexed by rating-1.
func (c Category) Distribution() [5]uint64 {
	return [5]uint64{c.Rating1, c.Rating2, c.Rating3, c.Rating4, c.Rating5}
}

// Ballot is the tally's own view of an event: whether it accepts votes and in
// which window.
type Ballot struct {
	EventID     string `gorm:"primaryKey"`
	OrganizerID string
	StartTime   time.Time
	EndTime     time.Time
	Active      bool

	ParticipantCount uint64
	TotalVotes       uint64
	CreatedAt        time.Time
}

type BallotCategory struct {
	EventID    string `gorm:"primaryKey"`
	CategoryID string `gorm:"primaryKey"`
	Position   int
}

type BallotVoter struct {
	EventID   string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey"`
	CreatedAt time.Time
}

type VoteRecord struct {
	EventID    string `gorm:"primaryKey"`
	UserID     string `gorm:"primaryKey"`
	CategoryID string `gorm:"primaryKey"`
	CreatedAt  time.Time
}

// VoteCommitment binds a vote without storing the voter or the rating.
type VoteCommitment struct {
	Commitment string `gorm:"primaryKey"`
	EventID    string `gorm:"index"`
	CategoryID string
	CreatedAt  time.Time
}
