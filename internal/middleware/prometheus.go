package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/questx-lab/eventreward/internal/common"
	"github.com/questx-lab/eventreward/pkg/errorx"
	"github.com/questx-lab/eventreward/pkg/router"
	"github.com/questx-lab/eventreward/pkg/xcontext"
)

func WithStartTime() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		return xcontext.WithStartTime(ctx, time.Now()), nil
	}
}

func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		code := 0
		if err := xcontext.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				code = int(errx.Code)
			} else {
				code = -1
			}
		}

		path := xcontext.HTTPRequest(ctx).URL.Path
		common.IncCounter(common.HTTPRequestTotal, path, fmt.Sprint(code))

		if histogram, ok := common.PromHistograms[common.HTTPRequestDurationSeconds]; ok {
			startTime := xcontext.StartTime(ctx)
			if !startTime.IsZero() {
				histogram.WithLabelValues(path, fmt.Sprint(code)).Observe(time.Since(startTime).Seconds())
			}
		}
	}
}
