package models

import (
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Per-User Clock State (Matches the user_settings simulation fields)
// -----------------------------------------------------------------------------

// MClockState is one user's simulated clock row. SimTime is always stored
// normalized to UTC; the engine projects it into the market zone when advancing.
type MClockState struct {
	UserID      uuid.UUID `json:"user_id"`
	SimTime     time.Time `json:"sim_time"`
	Speed       float64   `json:"speed"`
	Paused      bool      `json:"paused"`
	StartTime   time.Time `json:"start_time"`
	LastUpdated time.Time `json:"last_updated"`
}

// -----------------------------------------------------------------------------
// Wire shapes for the live socket and the settings endpoints
// -----------------------------------------------------------------------------

// MSimTimeUpdate is the unsolicited push frame. Exactly one of the two fields
// is set, so omitempty yields either {"sim_time": ...} or {"error": ...}.
type MSimTimeUpdate struct {
	SimTime string `json:"sim_time,omitempty"`
	Error   string `json:"error,omitempty"`
}

type MSpeedRequest struct {
	Speed float64 `json:"speed"`
}

type MPauseRequest struct {
	Paused bool `json:"paused"`
}

type MStartTimeRequest struct {
	StartTime string `json:"start_time"` // "YYYY-MM-DD"
}
