package app

import (
	"testing"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoaderConfig() aconfig.Config {
	return aconfig.Config{
		EnvPrefix: "STEEZY",
		SkipFiles: true,
		SkipFlags: true,
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STEEZY_DATABASE_URL", "postgres://localhost/steezy")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")

	cfg, err := loadConfig(testLoaderConfig())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.True(t, cfg.Migrate)
	assert.Equal(t, 60, cfg.RateLimit.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, []string{"POST", "PUT", "DELETE"}, cfg.RateLimit.Methods)
	assert.Equal(t, 15*time.Second, cfg.Graceful.ShutdownTimeout)
	assert.Equal(t, 120*time.Second, cfg.HTTP.IdleTimeout)
}

func TestLoadConfig_PlatformDefaults(t *testing.T) {
	t.Setenv("STEEZY_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "postgres://platform/db")
	t.Setenv("PORT", "9090")

	cfg, err := loadConfig(testLoaderConfig())
	require.NoError(t, err)

	assert.Equal(t, "postgres://platform/db", cfg.DatabaseURL)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr)
}

func TestLoadConfig_ExplicitAddrWins(t *testing.T) {
	t.Setenv("STEEZY_DATABASE_URL", "postgres://localhost/steezy")
	t.Setenv("STEEZY_ADDR", "127.0.0.1:7000")
	t.Setenv("PORT", "9090")

	cfg, err := loadConfig(testLoaderConfig())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
}

func TestLoadConfig_MissingDatabase(t *testing.T) {
	t.Setenv("STEEZY_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "")

	_, err := loadConfig(testLoaderConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is required")
}

func TestLoadConfig_InvalidRateLimit(t *testing.T) {
	t.Setenv("STEEZY_DATABASE_URL", "postgres://localhost/steezy")
	t.Setenv("STEEZY_RATE_LIMIT_MAX", "0")

	_, err := loadConfig(testLoaderConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rate limit")
}
