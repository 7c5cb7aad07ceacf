package simclock

import (
	"context"
	"time"

	"sim-trader/src/interfaces"
	"sim-trader/src/logger"
)

// -----------------------------------------------------------------------------
// Global Tick Scheduler
// -----------------------------------------------------------------------------

// Scheduler is the global tick loop: once per interval it advances every
// unpaused user clock by elapsed-real-time * speed market-seconds, persists
// the result and pushes it to subscribers.
type Scheduler struct {
	Store       interfaces.IClockStore
	Broadcaster interfaces.IBroadcaster
	Calendar    *Calendar
	Interval    time.Duration
	Logger      *logger.Logger
}

// -----------------------------------------------------------------------------

func NewScheduler(store interfaces.IClockStore, broadcaster interfaces.IBroadcaster,
	cal *Calendar, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		Store:       store,
		Broadcaster: broadcaster,
		Calendar:    cal,
		Interval:    interval,
		Logger:      log,
	}
}

// -----------------------------------------------------------------------------

// Run executes ticks until ctx is cancelled. The in-flight tick completes
// before Run returns; a row counts as advanced only once it is persisted.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Logger.Info("Scheduler started (interval %v)", s.Interval)

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx, time.Now().UTC())
		}
	}
}

// -----------------------------------------------------------------------------

// Tick runs one pass over all clock rows against a single captured now, so
// elapsed-time accounting is consistent across users within the tick. A
// failure on one row is contained to that row; the loop itself never dies.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("Tick: recovered from panic: %v", r)
		}
	}()

	states, err := s.Store.ListClockStates(ctx)
	if err != nil {
		s.Logger.Error("Tick: failed to list clock states: %v", err)
		return
	}

	for i := range states {
		state := &states[i]

		if state.Paused || state.Speed <= 0 {
			continue
		}

		elapsed := now.Sub(state.LastUpdated).Seconds()
		if elapsed < 0 {
			elapsed = 0
		}
		budget := elapsed * state.Speed

		previous := state.SimTime
		advanced := s.Calendar.Advance(state.SimTime.In(s.Calendar.Location()), budget)
		state.SimTime = advanced.UTC()
		state.LastUpdated = now

		if err := s.Store.SaveClockState(ctx, state); err != nil {
			// The stored row keeps its old last_updated, so the missed span
			// folds into the next successful tick's elapsed time.
			s.Logger.Error("Tick: failed to save clock state for user %s: %v", state.UserID, err)
			continue
		}

		if s.Broadcaster != nil && !state.SimTime.Equal(previous) {
			s.Broadcaster.Notify(state.UserID, state.SimTime)
		}
	}
}
