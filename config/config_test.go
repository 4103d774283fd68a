package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "wallet_ledger", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, int32(5), cfg.Database.MinConns)

	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "wallet-ledger", cfg.JWT.Issuer)

	assert.Equal(t, "USD", cfg.Ledger.FiatAsset)
	assert.Equal(t, "system", cfg.Ledger.SystemCounterparty)
	assert.Empty(t, cfg.Ledger.AdminUsernames)

	assert.Equal(t, "static", cfg.Oracle.Mode)
	assert.Equal(t, 30*time.Second, cfg.Oracle.CacheTTL)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoad_FromYAMLFile(t *testing.T) {
	content := []byte(`
server:
  host: "127.0.0.1"
  port: 9090
  mode: "release"
database:
  host: "db.example.com"
  port: 5433
  user: "appuser"
  password: "secret123"
  dbname: "ledgerdb"
  sslmode: "require"
redis:
  host: "redis.example.com"
  port: 6380
  password: "redispwd"
  db: 2
jwt:
  secret: "my-jwt-secret"
  expiry: "12h"
  issuer: "test-ledger"
ledger:
  fiat_asset: "EUR"
  system_counterparty: "treasury"
  admin_usernames:
    - "root"
    - "ops"
oracle:
  mode: "http"
  feed_url: "https://quotes.example.com"
  cache_ttl: "10s"
notify:
  webhook_url: "https://hooks.example.com/transfers"
  secret: "hook-secret"
log:
  level: "debug"
  pretty: true
`)
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, content, 0644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)

	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "appuser", cfg.Database.User)
	assert.Equal(t, "secret123", cfg.Database.Password)
	assert.Equal(t, "ledgerdb", cfg.Database.DBName)
	assert.Equal(t, "require", cfg.Database.SSLMode)

	assert.Equal(t, "redis.example.com", cfg.Redis.Host)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, "redispwd", cfg.Redis.Password)
	assert.Equal(t, 2, cfg.Redis.DB)

	assert.Equal(t, "my-jwt-secret", cfg.JWT.Secret)
	assert.Equal(t, 12*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "test-ledger", cfg.JWT.Issuer)

	assert.Equal(t, "EUR", cfg.Ledger.FiatAsset)
	assert.Equal(t, "treasury", cfg.Ledger.SystemCounterparty)
	assert.Equal(t, []string{"root", "ops"}, cfg.Ledger.AdminUsernames)

	assert.Equal(t, "http", cfg.Oracle.Mode)
	assert.Equal(t, "https://quotes.example.com", cfg.Oracle.FeedURL)
	assert.Equal(t, 10*time.Second, cfg.Oracle.CacheTTL)

	assert.Equal(t, "https://hooks.example.com/transfers", cfg.Notify.WebhookURL)
	assert.Equal(t, "hook-secret", cfg.Notify.Secret)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("WLG_SERVER_PORT", "3000")
	t.Setenv("WLG_DATABASE_HOST", "env-db-host")
	t.Setenv("WLG_JWT_SECRET", "env-secret")
	t.Setenv("WLG_LEDGER_FIAT_ASSET", "GBP")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "env-db-host", cfg.Database.Host)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "GBP", cfg.Ledger.FiatAsset)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432,
		User: "u", Password: "p", DBName: "wallet_ledger", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@localhost:5432/wallet_ledger?sslmode=disable", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "localhost", Port: 6379}
	assert.Equal(t, "localhost:6379", r.Addr())
}
