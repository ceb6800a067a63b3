package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "tuncrm.db", cfg.Database.DSN)
	assert.Equal(t, "TunCRM", cfg.Security.JWTIssuer)
	assert.Equal(t, "TunCRM_Users", cfg.Security.JWTAudience)
	assert.Equal(t, 60*time.Minute, cfg.Security.TokenTTLDuration())
	assert.Equal(t, 15*time.Minute, cfg.Cache.AbsoluteTTLDuration())
	assert.Equal(t, 5*time.Minute, cfg.Cache.SlidingTTLDuration())
	assert.True(t, cfg.Cache.InvalidateOnWrite)
	assert.Equal(t, 7*24*time.Hour, cfg.Notifications.StaleOpportunityAge())
	assert.Equal(t, "0 */30 * * * *", cfg.Notifications.Schedule)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "from-env", cfg.Security.JWTSecret)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:      AppConfig{Environment: "development"},
			Database: DatabaseConfig{Driver: "sqlite"},
			Cache:    CacheConfig{Backend: "memory", AbsoluteTTL: 900, SlidingTTL: 300},
		}
	}

	t.Run("development gets a fallback secret", func(t *testing.T) {
		cfg := base()
		require.NoError(t, cfg.Validate())
		assert.NotEmpty(t, cfg.Security.JWTSecret)
	})

	t.Run("production requires a secret", func(t *testing.T) {
		cfg := base()
		cfg.App.Environment = "production"
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := base()
		cfg.Database.Driver = "mysql"
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown cache backend", func(t *testing.T) {
		cfg := base()
		cfg.Cache.Backend = "memcached"
		assert.Error(t, cfg.Validate())
	})

	t.Run("sliding ttl longer than absolute", func(t *testing.T) {
		cfg := base()
		cfg.Cache.SlidingTTL = 1000
		assert.Error(t, cfg.Validate())
	})
}

// chdir switches the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
