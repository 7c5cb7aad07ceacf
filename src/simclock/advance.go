package simclock

import "time"

// -----------------------------------------------------------------------------
// Time Advancement Algorithm
// -----------------------------------------------------------------------------

// Advance returns the instant reached by consuming marketSeconds of wall-clock
// duration counted only while inside the [open, close) window, jumping over
// closed spans (nights, weekends, holidays in exchange mode) at zero cost.
// A budget <= 0 returns start unchanged.
//
// Each pass either consumes strictly positive budget or moves to a later day,
// so the loop is linear in the number of day transitions crossed, not in the
// size of the budget.
func (c *Calendar) Advance(start time.Time, marketSeconds float64) time.Time {
	if marketSeconds <= 0 {
		return start
	}

	current := start.In(c.loc)
	remaining := time.Duration(marketSeconds * float64(time.Second))

	for remaining > 0 {
		// Closed for the day (weekend or at/after the close): free jump.
		if !c.IsTradingDay(current) || !current.Before(c.CloseOn(current)) {
			current = c.NextMarketOpen(current)
			continue
		}

		// Resting before the bell: snap forward to the open at zero cost.
		if current.Before(c.OpenOn(current)) {
			current = c.OpenOn(current)
		}

		leftToday := c.CloseOn(current).Sub(current)
		step := remaining
		if leftToday < step {
			step = leftToday
		}
		current = current.Add(step)
		remaining -= step

		// Landing exactly on the close means the session is spent; a resting
		// state is never left inside a closed interval.
		if step == leftToday {
			current = c.NextMarketOpen(current)
		}
	}

	return current
}
