package domain

import (
	"context"
	"encoding/json"

	"github.com/pkg/math"
	"github.com/questx-lab/eventreward/pkg/errorx"
	"github.com/questx-lab/eventreward/pkg/pubsub"
	"github.com/questx-lab/eventreward/pkg/xcontext"
)

// paginate validates offset and clamps limit to the configured bounds.
func paginate(ctx context.Context, offset, limit int) (int, int, error) {
	if offset < 0 {
		return 0, 0, errorx.New(errorx.BadRequest, "Offset must not be negative")
	}

	cfg := xcontext.Configs(ctx).ApiServer
	if limit <= 0 {
		limit = cfg.DefaultLimit
	}

	return offset, math.MinInt(limit, cfg.MaxLimit), nil
}

// asServiceAccount returns a context acting as the given component account.
// Calls across components run under the callee's role checks with this
// account as the request user.
func asServiceAccount(ctx context.Context, account string) context.Context {
	return xcontext.WithRequestUserID(ctx, account)
}

// requestUserOr returns userID, or the request user when userID is empty.
func requestUserOr(ctx context.Context, userID string) string {
	if userID != "" {
		return userID
	}

	return xcontext.RequestUserID(ctx)
}

// publishAfterCommit publishes msg once the running transaction commits.
// Publish failures are logged only.
func publishAfterCommit(ctx context.Context, publisher pubsub.Publisher, topic, key string, msg any) {
	if publisher == nil || topic == "" {
		return
	}

	xcontext.AfterCommit(ctx, func() {
		b, err := json.Marshal(msg)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot marshal %s message: %v", topic, err)
			return
		}

		if err := publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(key), Msg: b}); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot publish %s message: %v", topic, err)
		}
	})
}
