package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sim-trader/src/helpers"
	"sim-trader/src/logger"
	"sim-trader/src/models"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrClockStateNotFound is returned when a user has no clock row.
var ErrClockStateNotFound = errors.New("clock state not found")

// SQLite stores instants as RFC3339Nano text, always UTC.
const sqliteTimeLayout = time.RFC3339Nano

// -----------------------------------------------------------------------------

type SQLiteClockStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteClockStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteClockStore, error) {
	return &SQLiteClockStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteClockStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteClockStore) createTables() error {
	// Clock rows survive restarts, so the table is created, never recreated.
	// SQLite types: TEXT for uuid/time, REAL for float64, INTEGER for bool
	query := `
		CREATE TABLE IF NOT EXISTS clock_states (
			user_id TEXT PRIMARY KEY,
			sim_time TEXT NOT NULL,
			speed REAL NOT NULL DEFAULT 1.0,
			paused INTEGER NOT NULL DEFAULT 0,
			start_time TEXT NOT NULL,
			last_updated TEXT NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create clock_states: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClockState(row rowScanner) (*models.MClockState, error) {
	var (
		id          string
		simTime     string
		speed       float64
		paused      int
		startTime   string
		lastUpdated string
	)
	if err := row.Scan(&id, &simTime, &speed, &paused, &startTime, &lastUpdated); err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id '%s': %w", id, err)
	}
	sim, err := time.Parse(sqliteTimeLayout, simTime)
	if err != nil {
		return nil, fmt.Errorf("invalid sim_time '%s': %w", simTime, err)
	}
	start, err := time.Parse(sqliteTimeLayout, startTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start_time '%s': %w", startTime, err)
	}
	updated, err := time.Parse(sqliteTimeLayout, lastUpdated)
	if err != nil {
		return nil, fmt.Errorf("invalid last_updated '%s': %w", lastUpdated, err)
	}

	return &models.MClockState{
		UserID:      userID,
		SimTime:     sim.UTC(),
		Speed:       speed,
		Paused:      paused != 0,
		StartTime:   start.UTC(),
		LastUpdated: updated.UTC(),
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteClockStore) ListClockStates(ctx context.Context) ([]models.MClockState, error) {
	rows, err := d.DB.QueryContext(ctx, `
		SELECT user_id, sim_time, speed, paused, start_time, last_updated
		FROM clock_states
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []models.MClockState
	for rows.Next() {
		state, err := scanClockState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, *state)
	}

	return states, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *SQLiteClockStore) GetClockState(ctx context.Context, userID uuid.UUID) (*models.MClockState, error) {
	row := d.DB.QueryRowContext(ctx, `
		SELECT user_id, sim_time, speed, paused, start_time, last_updated
		FROM clock_states WHERE user_id = ?
	`, userID.String())

	state, err := scanClockState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClockStateNotFound
	}
	return state, err
}

// -----------------------------------------------------------------------------

func (d *SQLiteClockStore) SaveClockState(ctx context.Context, state *models.MClockState) error {
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO clock_states (user_id, sim_time, speed, paused, start_time, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			sim_time = excluded.sim_time,
			speed = excluded.speed,
			paused = excluded.paused,
			start_time = excluded.start_time,
			last_updated = excluded.last_updated
	`, state.UserID.String(), state.SimTime.UTC().Format(sqliteTimeLayout), state.Speed,
		boolToInt(state.Paused), state.StartTime.UTC().Format(sqliteTimeLayout),
		state.LastUpdated.UTC().Format(sqliteTimeLayout))
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteClockStore) CreateClockState(ctx context.Context, state *models.MClockState) error {
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO clock_states (user_id, sim_time, speed, paused, start_time, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`, state.UserID.String(), state.SimTime.UTC().Format(sqliteTimeLayout), state.Speed,
		boolToInt(state.Paused), state.StartTime.UTC().Format(sqliteTimeLayout),
		state.LastUpdated.UTC().Format(sqliteTimeLayout))
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteClockStore) SetSpeed(ctx context.Context, userID uuid.UUID, speed float64) error {
	if speed < 0 {
		return &helpers.ValidationError{SimTraderError: helpers.SimTraderError{
			Message: fmt.Sprintf("speed cannot be negative: %v", speed),
		}}
	}

	res, err := d.DB.ExecContext(ctx,
		`UPDATE clock_states SET speed = ? WHERE user_id = ?`,
		speed, userID.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

// -----------------------------------------------------------------------------

func (d *SQLiteClockStore) SetPaused(ctx context.Context, userID uuid.UUID, paused bool) error {
	res, err := d.DB.ExecContext(ctx,
		`UPDATE clock_states SET paused = ? WHERE user_id = ?`,
		boolToInt(paused), userID.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

// -----------------------------------------------------------------------------

func (d *SQLiteClockStore) SetStartTime(ctx context.Context, userID uuid.UUID, startTime, simTime time.Time) error {
	// Only start_time and sim_time are owned here; last_updated is refreshed
	// by the tick loop on its next pass.
	res, err := d.DB.ExecContext(ctx,
		`UPDATE clock_states SET start_time = ?, sim_time = ? WHERE user_id = ?`,
		startTime.UTC().Format(sqliteTimeLayout), simTime.UTC().Format(sqliteTimeLayout),
		userID.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

// -----------------------------------------------------------------------------

func (d *SQLiteClockStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClockStateNotFound
	}
	return nil
}
