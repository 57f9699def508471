package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/saxenaaman628/redis-ballot-system/config"
	"github.com/saxenaaman628/redis-ballot-system/internal/api"
	"github.com/saxenaaman628/redis-ballot-system/internal/clock"
	"github.com/saxenaaman628/redis-ballot-system/internal/logger"
	"github.com/saxenaaman628/redis-ballot-system/internal/models"
	"github.com/saxenaaman628/redis-ballot-system/internal/postgres"
	"github.com/saxenaaman628/redis-ballot-system/internal/redis"
	redishandler "github.com/saxenaaman628/redis-ballot-system/internal/redisHandler"
	"github.com/saxenaaman628/redis-ballot-system/internal/registry"
	"github.com/saxenaaman628/redis-ballot-system/internal/utils"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default \":$PORT\")")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ballot HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()
		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "load config")
		}
		log := logger.Setup(cfg.LogLevel, cfg.Release)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		mirror, closer, err := openMirror(ctx, cfg)
		if err != nil {
			return err
		}
		if closer != nil {
			defer func() {
				if err := closer.Close(); err != nil {
					log.Warn().Err(err).Msg("close mirror store")
				}
			}()
		}

		opts := []registry.Option{registry.WithLogger(log)}
		if mirror != nil {
			opts = append(opts, registry.WithMirror(mirror, cfg.MirrorTimeout))
		}

		addr := serveAddr
		if addr == "" {
			addr = ":" + cfg.Port
		}
		log.Info().Str("store", cfg.StoreDriver).Msg("starting ballotd")

		return api.Serve(ctx, api.APIConfig{
			APIEndpoint: addr,
			Registry:    registry.New(opts...),
			Clock:       clock.System{},
			Issuer:      utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
			Users:       models.DemoUsers,
			Log:         log,
		})
	},
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

// openMirror connects the store selected by STORE_DRIVER. The memory driver
// has no mirror.
func openMirror(ctx context.Context, cfg config.Config) (registry.Mirror, io.Closer, error) {
	switch cfg.StoreDriver {
	case config.StoreRedis:
		rdb, err := redis.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return redishandler.NewBallotStore(rdb), rdb, nil
	case config.StorePostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewBallotStore(db), closeFunc(func() error { return postgres.Close(db) }), nil
	default:
		return nil, nil, nil
	}
}

