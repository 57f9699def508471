package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "REDIS_URI", "REDIS_PASSWORD", "REDIS_DB", "POSTGRES_DSN", "STORE_DRIVER",
		"JWT_SECRET", "TOKEN_TTL", "MIRROR_TIMEOUT", "LOG_LEVEL", "GIN_MODE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "localhost:6379", cfg.RedisURI)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, "dev-secret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 3*time.Second, cfg.MirrorTimeout)
	assert.False(t, cfg.Release)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "90m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StoreRedis, cfg.StoreDriver)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
}

func TestLoadRejects(t *testing.T) {
	clearEnv(t)
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "leveldb")
		_, err := Load()
		require.Error(t, err)
	})
	t.Run("postgres without dsn", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "postgres")
		t.Setenv("POSTGRES_DSN", "")
		_, err := Load()
		require.Error(t, err)
	})
	t.Run("release without secret", func(t *testing.T) {
		t.Setenv("GIN_MODE", "release")
		t.Setenv("JWT_SECRET", "")
		t.Setenv("STORE_DRIVER", "")
		_, err := Load()
		require.Error(t, err)
	})
}

func TestGetEnv(t *testing.T) {
	t.Setenv("BALLOT_TEST_KEY", "")
	assert.Equal(t, "fallback", GetEnv("BALLOT_TEST_KEY", "fallback"))
	t.Setenv("BALLOT_TEST_KEY", "set")
	assert.Equal(t, "set", GetEnv("BALLOT_TEST_KEY", "fallback"))
}
