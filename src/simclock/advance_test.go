package simclock

import (
	"testing"
	"time"
)

const sessionSeconds = 6.5 * 3600 // 06:30 to 13:00

func TestAdvanceZeroBudget(t *testing.T) {
	cal := testCalendar(t)

	instants := []time.Time{
		localTime(t, cal, 2020, time.May, 22, 10, 0, 0),  // mid session
		localTime(t, cal, 2020, time.May, 23, 10, 0, 0),  // saturday
		localTime(t, cal, 2020, time.May, 22, 13, 0, 0),  // at close
	}

	for _, instant := range instants {
		if got := cal.Advance(instant, 0); !got.Equal(instant) {
			t.Errorf("Advance(%v, 0) = %v, want unchanged", instant, got)
		}
		if got := cal.Advance(instant, -5); !got.Equal(instant) {
			t.Errorf("Advance(%v, -5) = %v, want unchanged", instant, got)
		}
	}
}

func TestAdvanceWithinSession(t *testing.T) {
	cal := testCalendar(t)

	start := localTime(t, cal, 2020, time.May, 25, 6, 30, 0)
	got := cal.Advance(start, 60)
	want := localTime(t, cal, 2020, time.May, 25, 6, 31, 0)
	if !got.Equal(want) {
		t.Errorf("Advance(Monday open, 60s) = %v, want %v", got, want)
	}
}

func TestAdvanceWeekendSkip(t *testing.T) {
	cal := testCalendar(t)

	// Friday 12:59:00 with a 3600s budget: 60s remain before Friday close,
	// the other 3540s are consumed from Monday 06:30:00.
	start := localTime(t, cal, 2020, time.May, 22, 12, 59, 0)
	got := cal.Advance(start, 3600)
	want := localTime(t, cal, 2020, time.May, 25, 6, 59, 0)
	if !got.Equal(want) {
		t.Errorf("Advance(Friday 12:59:00, 3600s) = %v, want %v", got, want)
	}
}

func TestAdvanceExactCloseLandsOnNextOpen(t *testing.T) {
	cal := testCalendar(t)

	// Consuming exactly the remaining session must rest at the next open,
	// never at the close itself.
	start := localTime(t, cal, 2020, time.May, 22, 12, 59, 0)
	got := cal.Advance(start, 60)
	want := localTime(t, cal, 2020, time.May, 25, 6, 30, 0)
	if !got.Equal(want) {
		t.Errorf("Advance(Friday 12:59:00, 60s) = %v, want %v", got, want)
	}
}

func TestAdvanceFromClosedState(t *testing.T) {
	cal := testCalendar(t)

	tests := []struct {
		name  string
		start time.Time
		want  time.Time
	}{
		{
			"saturday jumps to monday",
			localTime(t, cal, 2020, time.May, 23, 10, 0, 0),
			localTime(t, cal, 2020, time.May, 25, 6, 30, 30),
		},
		{
			"after close jumps to next day",
			localTime(t, cal, 2020, time.May, 25, 15, 0, 0),
			localTime(t, cal, 2020, time.May, 26, 6, 30, 30),
		},
		{
			"before open snaps to same-day open",
			localTime(t, cal, 2020, time.May, 25, 5, 0, 0),
			localTime(t, cal, 2020, time.May, 25, 6, 30, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.Advance(tt.start, 30); !got.Equal(tt.want) {
				t.Errorf("Advance(%v, 30s) = %v, want %v", tt.start, got, tt.want)
			}
		})
	}
}

func TestAdvanceMultipleSessions(t *testing.T) {
	cal := testCalendar(t)

	// Three full sessions starting Friday open: Friday, Monday and Tuesday
	// are spent exactly, so the clock rests at Wednesday's open.
	start := localTime(t, cal, 2020, time.May, 22, 6, 30, 0)
	got := cal.Advance(start, 3*sessionSeconds)
	want := localTime(t, cal, 2020, time.May, 27, 6, 30, 0)
	if !got.Equal(want) {
		t.Errorf("Advance(Friday open, 3 sessions) = %v, want %v", got, want)
	}
}

func TestAdvanceFractionalSeconds(t *testing.T) {
	cal := testCalendar(t)

	start := localTime(t, cal, 2020, time.May, 22, 6, 30, 0)
	got := cal.Advance(start, sessionSeconds+0.5)
	want := localTime(t, cal, 2020, time.May, 25, 6, 30, 0).Add(500 * time.Millisecond)
	if !got.Equal(want) {
		t.Errorf("Advance(Friday open, session+0.5s) = %v, want %v", got, want)
	}
}

func TestAdvanceMonotonic(t *testing.T) {
	cal := testCalendar(t)

	current := localTime(t, cal, 2020, time.May, 22, 6, 45, 0)
	budgets := []float64{0, 1, 59.5, 3600, sessionSeconds, 10 * sessionSeconds}

	for _, budget := range budgets {
		next := cal.Advance(current, budget)
		if next.Before(current) {
			t.Fatalf("Advance(%v, %v) = %v went backwards", current, budget, next)
		}
		current = next
	}
}

func TestAdvanceTradingHoursClosure(t *testing.T) {
	cal := testCalendar(t)

	starts := []time.Time{
		localTime(t, cal, 2020, time.May, 22, 6, 30, 0),
		localTime(t, cal, 2020, time.May, 22, 12, 59, 59),
		localTime(t, cal, 2020, time.May, 23, 3, 0, 0), // saturday
		localTime(t, cal, 2020, time.May, 25, 5, 0, 0), // pre-open
	}
	budgets := []float64{0.25, 61, 3599.5, sessionSeconds, 2.5 * sessionSeconds}

	for _, start := range starts {
		for _, budget := range budgets {
			got := cal.Advance(start, budget)
			atOpen := got.Equal(cal.OpenOn(got))
			if !atOpen && !cal.IsMarketOpen(got) {
				t.Errorf("Advance(%v, %v) = %v rests outside trading hours", start, budget, got)
			}
		}
	}
}

func TestAdvanceBudgetConservation(t *testing.T) {
	cal := testCalendar(t)

	// Two weeks of market time crossing two weekends: the in-market span
	// between start and result must equal the budget.
	start := localTime(t, cal, 2020, time.May, 22, 8, 0, 0)
	budget := 10 * sessionSeconds
	end := cal.Advance(start, budget)

	consumed := marketSecondsBetween(cal, start, end)
	if diff := consumed - budget; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("consumed %v market-seconds, want %v", consumed, budget)
	}
}

// marketSecondsBetween sums the in-market duration between two instants by
// walking calendar days, as an independent check on Advance.
func marketSecondsBetween(cal *Calendar, from, to time.Time) float64 {
	total := 0.0
	current := from.In(cal.Location())

	for current.Before(to) {
		dayEnd := cal.CloseOn(current)
		if cal.IsTradingDay(current) {
			segStart := current
			if segStart.Before(cal.OpenOn(current)) {
				segStart = cal.OpenOn(current)
			}
			segEnd := dayEnd
			if to.Before(segEnd) {
				segEnd = to
			}
			if segEnd.After(segStart) {
				total += segEnd.Sub(segStart).Seconds()
			}
		}
		// Move to the next day's midnight.
		next := time.Date(current.Year(), current.Month(), current.Day(), 0, 0, 0, 0, cal.Location()).AddDate(0, 0, 1)
		current = next
	}

	return total
}
