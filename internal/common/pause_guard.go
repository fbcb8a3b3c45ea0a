package common

import (
	"context"

	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/internal/repository"
	"github.com/questx-lab/eventreward/pkg/errorx"
	"github.com/questx-lab/eventreward/pkg/xcontext"
)

type PauseGuard struct {
	pauseRepo repository.PauseRepository
}

func NewPauseGuard(pauseRepo repository.PauseRepository) *PauseGuard {
	return &PauseGuard{pauseRepo: pauseRepo}
}

// Guard rejects the call if the module, or any given scope of it, is paused.
func (g *PauseGuard) Guard(ctx context.Context, module entity.Module, scopes ...string) error {
	ids := []string{entity.PauseKey(module, "")}
	for _, scope := range scopes {
		if scope != "" {
			ids = append(ids, entity.PauseKey(module, scope))
		}
	}

	paused, err := g.pauseRepo.IsPaused(ctx, ids...)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get pause state of %s: %v", module, err)
		return errorx.Unknown
	}

	if paused {
		return errorx.New(errorx.Paused, "Module %s is paused", module)
	}

	return nil
}
