package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/eventreward/internal/domain/cron"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(cctx *cli.Context) error {
	if err := s.loadServices(cctx.Int64("node")); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(
		cron.NewCloseVotingCronJob(s.eventRepo, s.eventDomain, s.configs.Cron.CloseVotingInterval))
	cronJobManager.Start(ctx)

	return nil
}
