package main

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/questx-lab/eventreward/config"
	"github.com/questx-lab/eventreward/internal/common"
	"github.com/questx-lab/eventreward/internal/domain"
	"github.com/questx-lab/eventreward/internal/entity"
	"github.com/questx-lab/eventreward/internal/repository"
	"github.com/questx-lab/eventreward/pkg/kafka"
	"github.com/questx-lab/eventreward/pkg/logger"
	"github.com/questx-lab/eventreward/pkg/pubsub"
	"github.com/questx-lab/eventreward/pkg/router"
	"github.com/questx-lab/eventreward/pkg/xcontext"
	"github.com/questx-lab/eventreward/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	ctx     context.Context
	configs config.Configs

	router      *router.Router
	redisClient xredis.Client
	publisher   pubsub.Publisher
	node        *snowflake.Node

	roleRepo        repository.RoleRepository
	pauseRepo       repository.PauseRepository
	eventRepo       repository.EventRepository
	participantRepo repository.ParticipantRepository
	ledgerRepo      repository.RewardLedgerRepository
	categoryRepo    repository.CategoryRepository
	ballotRepo      repository.BallotRepository
	itemRepo        repository.MerchItemRepository
	redemptionRepo  repository.RedemptionRepository

	roleVerifier *common.RoleVerifier
	pauseGuard   *common.PauseGuard
	writerLock   *common.WriterLock

	ledgerDomain     domain.RewardLedgerDomain
	eventDomain      domain.EventDomain
	votingDomain     domain.VotingDomain
	redemptionDomain domain.RedemptionDomain
	roleDomain       domain.RoleDomain
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.configs = cfg
	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.LogLevel)))
	return nil
}

func (s *srv) newDatabase() (*gorm.DB, error) {
	gormConfig := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	switch s.configs.Database.Driver {
	case "mysql":
		return gorm.Open(mysql.New(mysql.Config{
			DSN:                       s.configs.Database.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), gormConfig)

	case "sqlite":
		db, err := gorm.Open(sqlite.Open(s.configs.Database.Path), gormConfig)
		if err != nil {
			return nil, err
		}

		// Sqlite allows only one writer at a time.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)

		return db, nil
	}

	return nil, errors.New("unsupported database driver " + s.configs.Database.Driver)
}

func (s *srv) loadDatabase() error {
	db, err := s.newDatabase()
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	return nil
}

func (s *srv) migrateDB() error {
	return entity.MigrateTable(s.ctx)
}

// loadRedisClient connects the leaderboard cache. The service works without
// it, leaderboards are then read from the database.
func (s *srv) loadRedisClient() {
	if s.configs.Redis.Addr == "" {
		return
	}

	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		xcontext.Logger(s.ctx).Warnf("Cannot connect to redis, leaderboard cache is disabled: %v", err)
		return
	}

	s.redisClient = client
}

// loadPublisher connects the kafka producer. Without it no domain event is
// published.
func (s *srv) loadPublisher() {
	if s.configs.Kafka.Addr == "" {
		return
	}

	publisher, err := kafka.NewPublisher(s.configs.Kafka.ClientID, strings.Split(s.configs.Kafka.Addr, ","))
	if err != nil {
		xcontext.Logger(s.ctx).Warnf("Cannot connect to kafka, domain events are disabled: %v", err)
		return
	}

	s.publisher = publisher
}

func (s *srv) loadSnowflake(nodeID int64) error {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}

	s.node = node
	return nil
}

func (s *srv) loadRepos() {
	s.roleRepo = repository.NewRoleRepository()
	s.pauseRepo = repository.NewPauseRepository()
	s.eventRepo = repository.NewEventRepository()
	s.participantRepo = repository.NewParticipantRepository()
	s.ledgerRepo = repository.NewRewardLedgerRepository()
	s.categoryRepo = repository.NewCategoryRepository()
	s.ballotRepo = repository.NewBallotRepository()
	s.itemRepo = repository.NewMerchItemRepository()
	s.redemptionRepo = repository.NewRedemptionRepository()
}

func (s *srv) loadDomains() {
	s.roleVerifier = common.NewRoleVerifier(s.roleRepo)
	s.pauseGuard = common.NewPauseGuard(s.pauseRepo)
	s.writerLock = common.NewWriterLock()

	s.ledgerDomain = domain.NewRewardLedgerDomain(s.ledgerRepo, s.roleVerifier, s.pauseGuard,
		s.writerLock, s.node, s.redisClient, s.publisher)
	s.eventDomain = domain.NewEventDomain(s.eventRepo, s.participantRepo, s.ballotRepo,
		s.categoryRepo, s.ledgerDomain, s.roleVerifier, s.pauseGuard, s.writerLock)
	s.votingDomain = domain.NewVotingDomain(s.categoryRepo, s.ballotRepo, s.eventDomain,
		s.roleVerifier, s.pauseGuard, s.writerLock, s.publisher)
	s.redemptionDomain = domain.NewRedemptionDomain(s.itemRepo, s.redemptionRepo, s.ledgerDomain,
		s.roleVerifier, s.pauseGuard, s.writerLock, s.publisher)
	s.roleDomain = domain.NewRoleDomain(s.roleRepo, s.pauseRepo, s.roleVerifier)
}

// loadServices connects everything a long running command needs.
func (s *srv) loadServices(nodeID int64) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.migrateDB(); err != nil {
		return err
	}

	if err := s.loadSnowflake(nodeID); err != nil {
		return err
	}

	s.loadRedisClient()
	s.loadPublisher()
	s.loadRepos()
	s.loadDomains()
	return nil
}
