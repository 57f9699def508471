package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saxenaaman628/redis-ballot-system/internal/controller"
	"github.com/saxenaaman628/redis-ballot-system/internal/middleware"
	"github.com/saxenaaman628/redis-ballot-system/internal/models"
	"github.com/saxenaaman628/redis-ballot-system/internal/utils"
)

func RegisterRoutes(r gin.IRouter, bc *controller.BallotController, users []models.User, issuer *utils.TokenIssuer) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.POST("/login", LoginHandler(users, issuer))

	auth := r.Group("/api")
	auth.Use(middleware.JWTAuthMiddleware(issuer))
	{
		auth.POST("/ballots", bc.CreateBallotHandler)
		auth.GET("/ballots", bc.ListBallotsHandler)
		auth.GET("/ballots/:id", bc.GetBallotByID)
		auth.GET("/ballots/:id/voters/:voter", bc.VoterStatusHandler)
		auth.POST("/ballots/:id/advance", bc.AdvancePhaseHandler)
		auth.POST("/ballots/:id/register", bc.RegisterHandler)
		auth.POST("/ballots/:id/vote", bc.VoteHandler)
		auth.GET("/voters/:voter/votes", bc.VoteHistoryHandler)
		auth.GET("/archive", bc.ArchiveHandler)
	}
}
