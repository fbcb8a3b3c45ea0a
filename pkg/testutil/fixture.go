package testutil

import (
	"context"

	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/internal/repository"
	"github.com/questx-lab/eventreward/pkg/xcontext"
)

const (
	Admin      = "admin1"
	Organizer1 = "organizer1"
	Organizer2 = "organizer2"
	Fulfiller1 = "fulfiller1"
	Minter1    = "minter1"
	Burner1    = "burner1"
	User1      = "user1"
	User2      = "user2"
	User3      = "user3"

	Category1        = "category1"
	Category2        = "category2"
	InactiveCategory = "category3"
)

func InsertFixtures(ctx context.Context) {
	InsertRoles(ctx)
	InsertCategories(ctx)
}

func InsertRoles(ctx context.Context) {
	roleRepo := repository.NewRoleRepository()
	accounts := xcontext.Configs(ctx).ServiceAccounts

	grants := []entity.RoleGrant{
		{Role: entity.AdminRole, UserID: Admin},
		{Role: entity.OrganizerRole, UserID: Organizer1},
		{Role: entity.OrganizerRole, UserID: Organizer2},
		{Role: entity.FulfillerRole, UserID: Fulfiller1},
		{Role: entity.MinterRole, UserID: Minter1},
		{Role: entity.BurnerRole, UserID: Burner1},

		{Role: entity.MinterRole, UserID: accounts.EventManager},
		{Role: entity.OrganizerRole, UserID: accounts.EventManager},
		{Role: entity.BurnerRole, UserID: accounts.Redemption},
		{Role: entity.AdminRole, UserID: accounts.Scheduler},
	}

	for i := range grants {
		grants[i].GrantedBy = "fixture"
		if err := roleRepo.Grant(ctx, &grants[i]); err != nil {
			panic(err)
		}
	}
}

func InsertCategories(ctx context.Context) {
	categoryRepo := repository.NewCategoryRepository()

	categories := []entity.Category{
		{Base: entity.Base{ID: Category1}, Name: "Content", Active: true, CreatedBy: Organizer1},
		{Base: entity.Base{ID: Category2}, Name: "Venue", Active: true, CreatedBy: Organizer1},
		{Base: entity.Base{ID: InactiveCategory}, Name: "Food", Active: false, CreatedBy: Organizer1},
	}

	for i := range categories {
		if err := categoryRepo.Create(ctx, &categories[i]); err != nil {
			panic(err)
		}
	}
}
