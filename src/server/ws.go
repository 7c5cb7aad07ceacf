package server

import (
	"errors"
	"net/http"
	"time"

	"sim-trader/src/models"
	"sim-trader/src/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

// handleSimTimeWS subscribes the authenticated user to live sim_time pushes.
// Identity arrives resolved as an opaque user id; the connection is
// receive-only apart from keepalives.
func (s *Server) handleSimTimeWS(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid user_id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		server: s,
		userID: userID,
		conn:   conn,
		// Buffered so one slow write never blocks the tick loop
		send: make(chan models.MSimTimeUpdate, 16),
	}

	// Initial frame: the current sim time, or a structured error on the same
	// channel if the row is missing (the connection stays open).
	state, err := s.store.GetClockState(c.Request.Context(), userID)
	switch {
	case err == nil:
		client.send <- models.MSimTimeUpdate{SimTime: state.SimTime.UTC().Format(time.RFC3339)}
	case errors.Is(err, storage.ErrClockStateNotFound):
		client.send <- models.MSimTimeUpdate{Error: "no clock state found"}
	default:
		s.Logger.Error("Failed to load clock state for %s: %v", userID, err)
		client.send <- models.MSimTimeUpdate{Error: "database error"}
	}

	s.Broadcaster.Connect(userID, client)

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}
