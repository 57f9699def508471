package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/saxenaaman628/redis-ballot-system/internal/clock"
	"github.com/saxenaaman628/redis-ballot-system/internal/controller"
	"github.com/saxenaaman628/redis-ballot-system/internal/middleware"
	"github.com/saxenaaman628/redis-ballot-system/internal/models"
	"github.com/saxenaaman628/redis-ballot-system/internal/registry"
	"github.com/saxenaaman628/redis-ballot-system/internal/utils"
)

type APIConfig struct {
	APIEndpoint string
	Registry    *registry.Registry
	Clock       clock.Clock
	Issuer      *utils.TokenIssuer
	Users       []models.User
	Log         zerolog.Logger
}

func NewRouter(cfg APIConfig) *gin.Engine {
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	if cfg.Users == nil {
		cfg.Users = models.DemoUsers
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(cfg.Log))
	RegisterRoutes(r, controller.New(cfg.Registry, cfg.Clock, cfg.Log), cfg.Users, cfg.Issuer)
	return r
}

// Serve runs the API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, cfg APIConfig) error {
	srv := &http.Server{
		Addr:              cfg.APIEndpoint,
		Handler:           NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		cfg.Log.Info().Str("addr", cfg.APIEndpoint).Msg("api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve api")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cfg.Log.Info().Msg("api shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown api")
	}
	return nil
}
