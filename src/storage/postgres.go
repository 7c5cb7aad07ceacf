package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sim-trader/src/helpers"
	"sim-trader/src/logger"
	"sim-trader/src/models"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresClockStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresClockStore(cfg *models.MConfig, log *logger.Logger) (*PostgresClockStore, error) {
	// Use the executable name for the schema so several deployments can share
	// one database.
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresClockStore{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresClockStore) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return &helpers.DatabaseError{SimTraderError: helpers.SimTraderError{
			Message: "failed to reach postgres", Cause: err,
		}}
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	// Clock rows survive restarts, so the table is created, never recreated.
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."clock_states" (
			user_id UUID PRIMARY KEY,
			sim_time TIMESTAMPTZ NOT NULL,
			speed DOUBLE PRECISION NOT NULL DEFAULT 1.0,
			paused BOOLEAN NOT NULL DEFAULT FALSE,
			start_time TIMESTAMPTZ NOT NULL,
			last_updated TIMESTAMPTZ NOT NULL
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create clock_states: %w", err)
	}

	d.Logger.Info("PostgresClockStore initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresClockStore) table() string {
	return fmt.Sprintf(`"%s"."clock_states"`, d.Schema)
}

// -----------------------------------------------------------------------------

func scanPgClockState(row rowScanner) (*models.MClockState, error) {
	var (
		id          string
		state       models.MClockState
		simTime     time.Time
		startTime   time.Time
		lastUpdated time.Time
	)
	if err := row.Scan(&id, &simTime, &state.Speed, &state.Paused, &startTime, &lastUpdated); err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id '%s': %w", id, err)
	}

	state.UserID = userID
	state.SimTime = simTime.UTC()
	state.StartTime = startTime.UTC()
	state.LastUpdated = lastUpdated.UTC()
	return &state, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresClockStore) ListClockStates(ctx context.Context) ([]models.MClockState, error) {
	rows, err := d.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT user_id, sim_time, speed, paused, start_time, last_updated
		FROM %s
	`, d.table()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []models.MClockState
	for rows.Next() {
		state, err := scanPgClockState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, *state)
	}

	return states, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *PostgresClockStore) GetClockState(ctx context.Context, userID uuid.UUID) (*models.MClockState, error) {
	row := d.DB.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT user_id, sim_time, speed, paused, start_time, last_updated
		FROM %s WHERE user_id = $1
	`, d.table()), userID.String())

	state, err := scanPgClockState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClockStateNotFound
	}
	return state, err
}

// -----------------------------------------------------------------------------

func (d *PostgresClockStore) SaveClockState(ctx context.Context, state *models.MClockState) error {
	_, err := d.DB.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (user_id, sim_time, speed, paused, start_time, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			sim_time = EXCLUDED.sim_time,
			speed = EXCLUDED.speed,
			paused = EXCLUDED.paused,
			start_time = EXCLUDED.start_time,
			last_updated = EXCLUDED.last_updated
	`, d.table()), state.UserID.String(), state.SimTime.UTC(), state.Speed,
		state.Paused, state.StartTime.UTC(), state.LastUpdated.UTC())
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresClockStore) CreateClockState(ctx context.Context, state *models.MClockState) error {
	_, err := d.DB.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (user_id, sim_time, speed, paused, start_time, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING
	`, d.table()), state.UserID.String(), state.SimTime.UTC(), state.Speed,
		state.Paused, state.StartTime.UTC(), state.LastUpdated.UTC())
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresClockStore) SetSpeed(ctx context.Context, userID uuid.UUID, speed float64) error {
	if speed < 0 {
		return &helpers.ValidationError{SimTraderError: helpers.SimTraderError{
			Message: fmt.Sprintf("speed cannot be negative: %v", speed),
		}}
	}

	res, err := d.DB.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET speed = $1 WHERE user_id = $2`, d.table()),
		speed, userID.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

// -----------------------------------------------------------------------------

func (d *PostgresClockStore) SetPaused(ctx context.Context, userID uuid.UUID, paused bool) error {
	res, err := d.DB.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET paused = $1 WHERE user_id = $2`, d.table()),
		paused, userID.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

// -----------------------------------------------------------------------------

func (d *PostgresClockStore) SetStartTime(ctx context.Context, userID uuid.UUID, startTime, simTime time.Time) error {
	// Only start_time and sim_time are owned here; last_updated is refreshed
	// by the tick loop on its next pass.
	res, err := d.DB.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET start_time = $1, sim_time = $2 WHERE user_id = $3`, d.table()),
		startTime.UTC(), simTime.UTC(), userID.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

// -----------------------------------------------------------------------------

func (d *PostgresClockStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
