package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.False(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, 15*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, "samia-panel", cfg.Auth.JWT.Issuer)
	require.Equal(t, 30*time.Second, cfg.Panel.SummaryCacheTTL)
	require.True(t, cfg.Panel.RateLimit.Enabled)
	require.Equal(t, 100, cfg.Panel.RateLimit.MaxRequests)
	require.Equal(t, 90, cfg.Panel.AuditRetentionDays)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := []byte(`
server:
  port: 9100
  log_level: debug
  allowed_origins:
    - https://admin.samia-tarot.example
database:
  driver: postgres
  postgres:
    host: db.internal
    port: 5433
    database: panel
    username: panel
    password: secret
auth:
  jwt:
    secret: file-secret
panel:
  summary_cache_ttl: 45s
  rate_limit:
    max_requests: 20
    window: 30s
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), contents, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, []string{"https://admin.samia-tarot.example"}, cfg.Server.AllowedOrigins)
	require.Equal(t, "file-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 45*time.Second, cfg.Panel.SummaryCacheTTL)
	require.Equal(t, 20, cfg.Panel.RateLimit.MaxRequests)
	require.Equal(t, 30*time.Second, cfg.Panel.RateLimit.Window)

	dbCfg := cfg.DatabaseConfigValue()
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, 5433, dbCfg.Port)
	require.Equal(t, "panel", dbCfg.Name)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SAMIA_SERVER_PORT", "9200")
	t.Setenv("SAMIA_AUTH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 9200, cfg.Server.Port)
	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
}

func TestConfigValidate(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	// Secret missing by default.
	require.Error(t, cfg.Validate())

	cfg.Auth.JWT.Secret = "something"
	require.NoError(t, cfg.Validate())

	cfg.Server.Port = 0
	require.Error(t, cfg.Validate())
}
