package server

import (
	"errors"
	"time"

	"sim-trader/src/helpers"
	"sim-trader/src/models"
	"sim-trader/src/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Epoch used for new clock rows when the config does not pin one. A Friday
// inside market hours, so a fresh clock starts advancing immediately.
const defaultStartDate = "2020-05-22"

// -----------------------------------------------------------------------------
// Clock-control endpoints. These rewrite rows directly, bypassing the tick
// math; they race benignly with the scheduler (last write wins per row).
// -----------------------------------------------------------------------------

func (s *Server) createSettings(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid user_id"})
		return
	}

	epoch := s.defaultEpoch()
	state := &models.MClockState{
		UserID:      userID,
		SimTime:     epoch,
		Speed:       1.0,
		Paused:      false,
		StartTime:   epoch,
		LastUpdated: time.Now().UTC(),
	}

	if err := s.store.CreateClockState(c.Request.Context(), state); err != nil {
		s.Logger.Error("Failed to create clock state for %s: %v", userID, err)
		c.JSON(500, gin.H{"error": "failed to create clock state"})
		return
	}

	c.JSON(201, state)
}

// -----------------------------------------------------------------------------

func (s *Server) getSettings(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid user_id"})
		return
	}

	state, err := s.store.GetClockState(c.Request.Context(), userID)
	if err != nil {
		s.renderStoreError(c, userID, err)
		return
	}

	c.JSON(200, state)
}

// -----------------------------------------------------------------------------

func (s *Server) setSpeed(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid user_id"})
		return
	}

	var req models.MSpeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.store.SetSpeed(c.Request.Context(), userID, req.Speed); err != nil {
		s.renderStoreError(c, userID, err)
		return
	}

	s.respondWithState(c, userID)
}

// -----------------------------------------------------------------------------

func (s *Server) setPause(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid user_id"})
		return
	}

	var req models.MPauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.store.SetPaused(c.Request.Context(), userID, req.Paused); err != nil {
		s.renderStoreError(c, userID, err)
		return
	}

	s.respondWithState(c, userID)
}

// -----------------------------------------------------------------------------

// setStartTime accepts a calendar date ("YYYY-MM-DD") and rewinds the user's
// clock to the market open on that date (next open if it is not a trading day).
func (s *Server) setStartTime(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid user_id"})
		return
	}

	var req models.MStartTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	simStart, err := s.simStartFor(req.StartTime)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid date format, use YYYY-MM-DD"})
		return
	}

	if err := s.store.SetStartTime(c.Request.Context(), userID, simStart, simStart); err != nil {
		s.renderStoreError(c, userID, err)
		return
	}

	s.respondWithState(c, userID)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (s *Server) respondWithState(c *gin.Context, userID uuid.UUID) {
	state, err := s.store.GetClockState(c.Request.Context(), userID)
	if err != nil {
		s.renderStoreError(c, userID, err)
		return
	}
	c.JSON(200, state)
}

// -----------------------------------------------------------------------------

func (s *Server) renderStoreError(c *gin.Context, userID uuid.UUID, err error) {
	var validationErr *helpers.ValidationError

	switch {
	case errors.Is(err, storage.ErrClockStateNotFound):
		c.JSON(404, gin.H{"error": "clock state not found"})
	case errors.As(err, &validationErr):
		c.JSON(400, gin.H{"error": validationErr.Message})
	default:
		s.Logger.Error("Store error for user %s: %v", userID, err)
		c.JSON(500, gin.H{"error": "internal error"})
	}
}

// -----------------------------------------------------------------------------

// simStartFor maps a "YYYY-MM-DD" date to the sim instant the clock should
// rest at: the open on that day, or the next open if the market is closed.
func (s *Server) simStartFor(dateStr string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", dateStr, s.calendar.Location())
	if err != nil {
		return time.Time{}, err
	}
	if s.calendar.IsTradingDay(day) {
		return s.calendar.OpenOn(day).UTC(), nil
	}
	return s.calendar.NextMarketOpen(day).UTC(), nil
}

// -----------------------------------------------------------------------------

func (s *Server) defaultEpoch() time.Time {
	dateStr := s.Config.Market.DefaultStartDate
	if dateStr == "" {
		dateStr = defaultStartDate
	}
	epoch, err := s.simStartFor(dateStr)
	if err != nil {
		// Config validation already vetted the date; the constant is known good.
		epoch, _ = s.simStartFor(defaultStartDate)
	}
	return epoch
}
