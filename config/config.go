package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env      string
	LogLevel string

	Database        DatabaseConfigs
	ApiServer       ServerConfigs
	Auth            AuthConfigs
	Redis           RedisConfigs
	Kafka           KafkaConfigs
	Event           EventConfigs
	Voting          VotingConfigs
	ServiceAccounts ServiceAccountConfigs
	Bootstrap       BootstrapConfigs
	Cron            CronConfigs
}

type DatabaseConfigs struct {
	// Driver is "mysql" or "sqlite".
	Driver   string
	Path     string
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host           string
	Port           string
	AllowedOrigins []string

	MaxLimit     int
	DefaultLimit int
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Expiration time.Duration
}

type RedisConfigs struct {
	Addr string
}

type KafkaConfigs struct {
	Addr     string
	ClientID string

	LedgerTopic     string
	RedemptionTopic string
	VoteTopic       string
}

type EventConfigs struct {
	MinDuration       time.Duration
	MaxDuration       time.Duration
	MinVotingDuration time.Duration
	MaxVotingDuration time.Duration
	MaxCategories     int
	MaxBatchSize      int
}

type VotingConfigs struct {
	MaxBatchSize int

	// RatingPrecision scales the average rating to avoid fractions. An
	// average of 4.25 is reported as 425 with a precision of 100.
	RatingPrecision uint64
}

// ServiceAccountConfigs names the principals the components act as when they
// call each other.
type ServiceAccountConfigs struct {
	EventManager string
	Redemption   string
	Scheduler    string
}

type BootstrapConfigs struct {
	Admins []string
}

type CronConfigs struct {
	CloseVotingInterval time.Duration
}
