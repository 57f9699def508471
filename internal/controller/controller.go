package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/saxenaaman628/redis-ballot-system/internal/ballot"
	"github.com/saxenaaman628/redis-ballot-system/internal/clock"
	"github.com/saxenaaman628/redis-ballot-system/internal/middleware"
	"github.com/saxenaaman628/redis-ballot-system/internal/registry"
)

// BallotController exposes registry and ballot operations over HTTP. The
// caller is the JWT identity; the time is read from Clock.
type BallotController struct {
	Registry *registry.Registry
	Clock    clock.Clock
	Log      zerolog.Logger
}

func New(reg *registry.Registry, clk clock.Clock, log zerolog.Logger) *BallotController {
	return &BallotController{Registry: reg, Clock: clk, Log: log}
}

func caller(c *gin.Context) (ballot.Identity, bool) {
	id := c.GetString(middleware.KeyUserID)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return ballot.Identity(id), true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ballot.ErrUnauthorized), errors.Is(err, ballot.ErrNotRegistered):
		return http.StatusForbidden
	case errors.Is(err, ballot.ErrInvalidTransition),
		errors.Is(err, ballot.ErrWrongPhase),
		errors.Is(err, ballot.ErrAlreadyRegistered),
		errors.Is(err, ballot.ErrAlreadyVoted):
		return http.StatusConflict
	case errors.Is(err, ballot.ErrInvalidChoice):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrBallotNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (bc *BallotController) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		bc.Log.Error().Err(err).Str("request_id", c.GetString(middleware.KeyRequestID)).Msg("request failed")
		c.JSON(status, gin.H{"error": "Internal error"})
		return
	}

	body := gin.H{"error": errors.Cause(err).Error()}
	if kind := ballot.Kind(err); kind != "" {
		body["code"] = kind
	} else if errors.Is(err, registry.ErrBallotNotFound) {
		body["code"] = "BallotNotFound"
	}
	c.JSON(status, body)
}
