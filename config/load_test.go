package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Default(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
Env = "prod"
LogLevel = "warn"

[Database]
Driver = "mysql"
Host = "db"
Port = "3306"
Database = "eventreward"
User = "root"
Password = "secret"

[Voting]
MaxBatchSize = 6

[Bootstrap]
Admins = ["alice", "bob"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "mysql", cfg.Database.Driver)
	require.Equal(t, "root:secret@tcp(db:3306)/eventreward?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.ConnectionString())
	require.Equal(t, 6, cfg.Voting.MaxBatchSize)
	require.Equal(t, uint64(100), cfg.Voting.RatingPrecision)
	require.Equal(t, []string{"alice", "bob"}, cfg.Bootstrap.Admins)
	require.Equal(t, time.Hour, cfg.Event.MinDuration)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
