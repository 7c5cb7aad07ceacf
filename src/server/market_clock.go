package server

import (
	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Real-market clock relay
// -----------------------------------------------------------------------------

// getMarketClock relays the real exchange clock (used by the UI to show
// whether the actual market is open, independent of any simulated clock).
func (s *Server) getMarketClock(c *gin.Context) {
	if s.alpaca == nil {
		c.JSON(503, gin.H{"error": "market clock not configured"})
		return
	}

	clock, err := s.alpaca.GetClock()
	if err != nil {
		s.Logger.Error("Failed to fetch market clock: %v", err)
		c.JSON(502, gin.H{"error": "failed to fetch market clock"})
		return
	}

	c.JSON(200, gin.H{
		"timestamp":  clock.Timestamp,
		"is_open":    clock.IsOpen,
		"next_open":  clock.NextOpen,
		"next_close": clock.NextClose,
	})
}
