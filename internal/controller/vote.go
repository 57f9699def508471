package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saxenaaman628/redis-ballot-system/internal/ballot"
)

// VotePayload is the expected vote request
type VotePayload struct {
	Choice string `json:"choice" binding:"required"`
}

func (bc *BallotController) AdvancePhaseHandler(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	phase, err := bc.Registry.AdvancePhase(c.Request.Context(), c.Param("id"), userID, bc.Clock.Now())
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Phase advanced", "phase": phase.String()})
}

func (bc *BallotController) RegisterHandler(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	if err := bc.Registry.Register(c.Request.Context(), c.Param("id"), userID); err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registered successfully"})
}

func (bc *BallotController) VoteHandler(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	var payload VotePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vote payload"})
		return
	}
	choice, err := ballot.ParseChoice(payload.Choice)
	if err != nil {
		bc.respondError(c, err)
		return
	}

	if err := bc.Registry.Vote(c.Request.Context(), c.Param("id"), userID, choice); err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vote recorded successfully"})
}
