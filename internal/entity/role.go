package entity

import (
	"time"

	"github.com/questx-lab/eventreward/pkg/enum"
)

type Role string

var (
	AdminRole     = enum.New(Role("admin"))
	OrganizerRole = enum.New(Role("organizer"))
	MinterRole    = enum.New(Role("minter"))
	BurnerRole    = enum.New(Role("burner"))
	FulfillerRole = enum.New(Role("fulfiller"))
)

// RoleGrant is a row of the (role, account) capability table. An account
// holds a role iff the row exists.
type RoleGrant struct {
	Role      Role   `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey"`
	GrantedBy string
	CreatedAt time.Time
}
