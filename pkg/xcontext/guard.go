package xcontext

import (
	"context"

	"github.com/questx-lab/eventreward/pkg/errorx"
	"golang.org/x/exp/slices"
)

type callGuardKey struct{}

// WithCallGuard marks ctx as being inside a mutating operation of the named
// component. It fails if the same component is already on the call path.
func WithCallGuard(ctx context.Context, name string) (context.Context, error) {
	guards, _ := ctx.Value(callGuardKey{}).([]string)
	if slices.Contains(guards, name) {
		return ctx, errorx.New(errorx.Reentrant, "Reentrant call into %s", name)
	}

	next := make([]string, 0, len(guards)+1)
	next = append(next, guards...)
	next = append(next, name)
	return context.WithValue(ctx, callGuardKey{}, next), nil
}
