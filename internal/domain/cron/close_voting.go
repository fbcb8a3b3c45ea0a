package cron

import (
	"context"
	"time"

	"github.com/questx-lab/eventreward/internal/domain"
	"github.com/questx-lab/eventreward/internal/model"
	"github.com/questx-lab/eventreward/internal/repository"
	"github.com/questx-lab/eventreward/pkg/dateutil"
	"github.com/questx-lab/eventreward/pkg/xcontext"
)

// CloseVotingCronJob closes the voting phase of every event whose voting
// window has ended.
type CloseVotingCronJob struct {
	eventRepo   repository.EventRepository
	eventDomain domain.EventDomain
	interval    time.Duration
}

func NewCloseVotingCronJob(
	eventRepo repository.EventRepository,
	eventDomain domain.EventDomain,
	interval time.Duration,
) *CloseVotingCronJob {
	return &CloseVotingCronJob{
		eventRepo:   eventRepo,
		eventDomain: eventDomain,
		interval:    interval,
	}
}

func (job *CloseVotingCronJob) Do(ctx context.Context) {
	events, err := job.eventRepo.GetVotingExpired(ctx, xcontext.Now(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get voting expired events: %v", err)
		return
	}

	ctx = xcontext.WithRequestUserID(ctx, xcontext.Configs(ctx).ServiceAccounts.Scheduler)
	for _, event := range events {
		_, err := job.eventDomain.CloseVoting(ctx, &model.CloseVotingRequest{EventID: event.ID})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot close voting of event %s: %v", event.ID, err)
			continue
		}

		xcontext.Logger(ctx).Infof("Closed voting of event %s", event.ID)
	}
}

func (job *CloseVotingCronJob) RunNow() bool {
	return true
}

func (job *CloseVotingCronJob) Next() time.Time {
	return dateutil.NextTick(time.Now(), job.interval)
}
