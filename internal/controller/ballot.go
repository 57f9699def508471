package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/saxenaaman628/redis-ballot-system/internal/ballot"
	"github.com/saxenaaman628/redis-ballot-system/internal/models"
)

type createBallotInput struct {
	Topic                string `json:"topic"`
	OptionA              string `json:"option_a"`
	OptionB              string `json:"option_b"`
	ScheduledVotingTime  int64  `json:"scheduled_voting_time"`
	ScheduledClosingTime int64  `json:"scheduled_closing_time"`
	Manager              string `json:"manager"` // defaults to the caller
}

func (bc *BallotController) CreateBallotHandler(c *gin.Context) {
	var input createBallotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := caller(c)
	if !ok {
		return
	}

	manager := userID
	if m := strings.TrimSpace(input.Manager); m != "" {
		manager = ballot.Identity(m)
	}

	h := bc.Registry.CreateBallot(c.Request.Context(), userID, manager,
		input.Topic, input.OptionA, input.OptionB,
		input.ScheduledVotingTime, input.ScheduledClosingTime)

	c.JSON(http.StatusCreated, gin.H{"message": "Ballot created", "ballot_id": h.ID})
}

// ListBallotsHandler lists ballots in creation order, optionally filtered by
// phase label and manager.
func (bc *BallotController) ListBallotsHandler(c *gin.Context) {
	phaseStr := c.Query("phase")
	manager := c.Query("manager")

	var phaseFilter *ballot.Phase
	if phaseStr != "" {
		p, err := ballot.ParsePhase(phaseStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phase value"})
			return
		}
		phaseFilter = &p
	}

	ballots := make([]models.BallotRecord, 0)
	for _, h := range bc.Registry.ListBallots() {
		rec := h.Record()
		if phaseFilter != nil && rec.Phase != phaseFilter.String() {
			continue
		}
		if manager != "" && rec.Manager != manager {
			continue
		}
		ballots = append(ballots, rec)
	}
	c.JSON(http.StatusOK, gin.H{"ballots": ballots})
}

func (bc *BallotController) GetBallotByID(c *gin.Context) {
	h, err := bc.Registry.Handle(c.Param("id"))
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.Record()})
}

// VoterStatusHandler answers the two membership questions for one identity.
func (bc *BallotController) VoterStatusHandler(c *gin.Context) {
	b, err := bc.Registry.Get(c.Param("id"))
	if err != nil {
		bc.respondError(c, err)
		return
	}
	voter := ballot.Identity(c.Param("voter"))
	c.JSON(http.StatusOK, gin.H{
		"voter":      voter,
		"registered": b.IsRegistered(voter),
		"voted":      b.HasVoted(voter),
	})
}

// ArchiveHandler lists the records held by the mirror store.
func (bc *BallotController) ArchiveHandler(c *gin.Context) {
	recs, configured, err := bc.Registry.Archive(c.Request.Context())
	if !configured {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No mirror store configured"})
		return
	}
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ballots": recs})
}

// VoteHistoryHandler lists, from the mirror store, the choice a voter made
// on each ballot.
func (bc *BallotController) VoteHistoryHandler(c *gin.Context) {
	voter := ballot.Identity(c.Param("voter"))
	votes, configured, err := bc.Registry.VoteHistory(c.Request.Context(), voter)
	if !configured {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No mirror store configured"})
		return
	}
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voter": voter, "votes": votes})
}
