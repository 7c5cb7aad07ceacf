package interfaces

import (
	"context"
	"time"

	"sim-trader/src/models"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// IClockStore defines the contract for clock-state persistence.
// -----------------------------------------------------------------------------

type IClockStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// ListClockStates returns every user's clock row.
	ListClockStates(ctx context.Context) ([]models.MClockState, error)

	// -----------------------------------------------------------------------------

	// GetClockState returns one user's clock row, or ErrClockStateNotFound.
	GetClockState(ctx context.Context, userID uuid.UUID) (*models.MClockState, error)

	// -----------------------------------------------------------------------------

	// SaveClockState upserts the full row (overwrite semantics, idempotent).
	SaveClockState(ctx context.Context, state *models.MClockState) error

	// -----------------------------------------------------------------------------

	// CreateClockState inserts a row if none exists for the user yet.
	CreateClockState(ctx context.Context, state *models.MClockState) error

	// -----------------------------------------------------------------------------
	// Out-of-band control writes. Each sets only the fields it owns and races
	// benignly with the tick loop (last write wins at row granularity).

	// SetSpeed updates the playback speed. Negative speed is rejected.
	SetSpeed(ctx context.Context, userID uuid.UUID, speed float64) error

	// SetPaused pauses or resumes the clock.
	SetPaused(ctx context.Context, userID uuid.UUID, paused bool) error

	// SetStartTime rewrites start_time and resets sim_time to the given instant.
	SetStartTime(ctx context.Context, userID uuid.UUID, startTime, simTime time.Time) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
