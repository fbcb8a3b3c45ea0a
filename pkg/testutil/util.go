package testutil

import (
	"context"
	"time"

	"github.com/questx-lab/eventreward/config"
	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/pkg/logger"
	"github.com/questx-lab/eventreward/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Now is the wall clock of every mock context.
var Now = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func MockConfigs() config.Configs {
	cfg := config.Default()
	cfg.Auth.TokenSecret = "secret"
	cfg.ApiServer.DefaultLimit = 10
	cfg.ApiServer.MaxLimit = 50
	return cfg
}

// MockContext returns a context holding a fresh in-memory database with every
// table migrated and the fixtures inserted.
func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	// Every connection to ":memory:" opens a different database.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, MockConfigs())
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.ERROR))
	ctx = xcontext.WithDB(ctx, db)
	ctx = WithTime(ctx, Now)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	InsertFixtures(ctx)
	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}

// WithTime freezes the wall clock of ctx at t.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return xcontext.WithClock(ctx, func() time.Time { return t })
}
