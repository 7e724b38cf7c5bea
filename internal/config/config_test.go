package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ats-service", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 30, cfg.App.RequestTimeoutSeconds)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.True(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 60, cfg.Auth.AccessTokenTTLMinutes)
	assert.True(t, cfg.Provisioning.RequireEmailVerification)
	assert.Equal(t, "Free", cfg.Provisioning.DefaultPlanName)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("PROVISIONING_REQUIRE_EMAIL_VERIFICATION", "false")
	t.Setenv("PLAN_CACHE_TTL_SECONDS", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.False(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, 15, cfg.Auth.AccessTokenTTLMinutes)
	assert.False(t, cfg.Provisioning.RequireEmailVerification)
	assert.Equal(t, 2*time.Minute, cfg.Provisioning.PlanCacheTTL())
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestAppConfig_Addr(t *testing.T) {
	app := AppConfig{Host: "0.0.0.0", Port: "8080"}
	assert.Equal(t, "0.0.0.0:8080", app.Addr())
}

func TestAppConfig_RequestTimeout(t *testing.T) {
	assert.Equal(t, 45*time.Second, AppConfig{RequestTimeoutSeconds: 45}.RequestTimeout())
	assert.Equal(t, time.Duration(0), AppConfig{}.RequestTimeout())
}

func TestStorageConfig_PresignTTL(t *testing.T) {
	assert.Equal(t, 30*time.Second, StorageConfig{PresignTTLSeconds: 30}.PresignTTL())
	assert.Equal(t, time.Hour, StorageConfig{}.PresignTTL())
}
