package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	Port          string
	RedisURI      string
	RedisPassword string
	RedisDB       int
	PostgresDSN   string
	StoreDriver   string
	JWTSecret     string
	TokenTTL      time.Duration
	MirrorTimeout time.Duration
	LogLevel      string
	Release       bool
}

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Msg("no .env file found, using environment variables")
	}
}

func GetEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

// Load reads configuration from the environment, after LoadEnv has had a
// chance to populate it from .env.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("REDIS_URI", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("STORE_DRIVER", StoreMemory)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("MIRROR_TIMEOUT", "3s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GIN_MODE", "debug")

	cfg := Config{
		Port:          v.GetString("PORT"),
		RedisURI:      v.GetString("REDIS_URI"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		PostgresDSN:   v.GetString("POSTGRES_DSN"),
		StoreDriver:   strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		JWTSecret:     v.GetString("JWT_SECRET"),
		TokenTTL:      v.GetDuration("TOKEN_TTL"),
		MirrorTimeout: v.GetDuration("MIRROR_TIMEOUT"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		Release:       v.GetString("GIN_MODE") == "release",
	}

	switch cfg.StoreDriver {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if cfg.PostgresDSN == "" {
			return Config{}, errors.New("POSTGRES_DSN is required when STORE_DRIVER=postgres")
		}
	default:
		return Config{}, errors.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.JWTSecret == "" {
		if cfg.Release {
			return Config{}, errors.New("JWT_SECRET is required in release mode")
		}
		cfg.JWTSecret = "dev-secret"
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, errors.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	return cfg, nil
}
