package main

import (
	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/internal/repository"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

const bootstrapGrantor = "bootstrap"

func (s *srv) startBootstrap(*cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.migrateDB(); err != nil {
		return err
	}

	accounts := s.configs.ServiceAccounts
	grants := []entity.RoleGrant{
		{Role: entity.MinterRole, UserID: accounts.EventManager},
		{Role: entity.OrganizerRole, UserID: accounts.EventManager},
		{Role: entity.BurnerRole, UserID: accounts.Redemption},
		{Role: entity.AdminRole, UserID: accounts.Scheduler},
	}

	for _, admin := range s.configs.Bootstrap.Admins {
		grants = append(grants, entity.RoleGrant{Role: entity.AdminRole, UserID: admin})
	}

	roleRepo := repository.NewRoleRepository()
	for i := range grants {
		if grants[i].UserID == "" {
			continue
		}

		grants[i].GrantedBy = bootstrapGrantor
		if err := roleRepo.Grant(s.ctx, &grants[i]); err != nil {
			return err
		}

		xcontext.Logger(s.ctx).Infof("Granted %s to %s", grants[i].Role, grants[i].UserID)
	}

	return nil
}
