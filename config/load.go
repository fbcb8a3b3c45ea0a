package config

import (
	"time"

	"github.com/BurntSushi/toml"
)

func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Driver: "sqlite",
			Path:   "eventreward.db",
		},
		ApiServer: ServerConfigs{
			Host:           "0.0.0.0",
			Port:           "8080",
			AllowedOrigins: []string{"*"},
			MaxLimit:       50,
			DefaultLimit:   10,
		},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{
				Name:       "access_token",
				Expiration: 24 * time.Hour,
			},
		},
		Redis: RedisConfigs{Addr: "localhost:6379"},
		Kafka: KafkaConfigs{
			Addr:            "localhost:9092",
			ClientID:        "eventreward",
			LedgerTopic:     "reward_ledger",
			RedemptionTopic: "redemption",
			VoteTopic:       "vote",
		},
		Event: EventConfigs{
			MinDuration:       time.Hour,
			MaxDuration:       30 * 24 * time.Hour,
			MinVotingDuration: time.Hour,
			MaxVotingDuration: 7 * 24 * time.Hour,
			MaxCategories:     10,
			MaxBatchSize:      200,
		},
		Voting: VotingConfigs{
			MaxBatchSize:    10,
			RatingPrecision: 100,
		},
		ServiceAccounts: ServiceAccountConfigs{
			EventManager: "svc_event_manager",
			Redemption:   "svc_redemption",
			Scheduler:    "svc_scheduler",
		},
		Cron: CronConfigs{
			CloseVotingInterval: time.Minute,
		},
	}
}

// Load decodes the TOML file at path over the default configuration. An empty
// path returns the defaults.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Configs{}, err
	}

	return cfg, nil
}
