package simclock

import (
	"fmt"
	"time"

	"sim-trader/src/models"

	"github.com/scmhub/calendar"
)

// -----------------------------------------------------------------------------
// Market Calendar Rules
// -----------------------------------------------------------------------------

// Calendar classifies instants against the simulated market's trading window.
// The simulated session is a fixed daily window on Mon-Fri; the optional
// exchange calendar (ISO 10383 MIC "xnys") additionally excludes NYSE holidays.
type Calendar struct {
	loc       *time.Location
	openHour  int
	openMin   int
	closeHour int
	closeMin  int
	exchange  *calendar.Calendar
}

// -----------------------------------------------------------------------------

// NewCalendar builds a Calendar from the market config section.
func NewCalendar(cfg models.MMarketConfig) (*Calendar, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load market timezone '%s': %w", cfg.Timezone, err)
	}

	openHour, openMin, err := parseClockTime(cfg.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("invalid market open time '%s': %w", cfg.OpenTime, err)
	}
	closeHour, closeMin, err := parseClockTime(cfg.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("invalid market close time '%s': %w", cfg.CloseTime, err)
	}

	c := &Calendar{
		loc:       loc,
		openHour:  openHour,
		openMin:   openMin,
		closeHour: closeHour,
		closeMin:  closeMin,
	}

	if cfg.UseExchangeCalendar {
		// See scmhub/calendar for supported MICs (ISO 10383)
		c.exchange = calendar.GetCalendar("xnys")
		if c.exchange == nil {
			return nil, fmt.Errorf("exchange calendar 'xnys' not available")
		}
	}

	return c, nil
}

// -----------------------------------------------------------------------------

func parseClockTime(s string) (int, int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

// -----------------------------------------------------------------------------

// Location returns the market's local time zone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// -----------------------------------------------------------------------------

// IsTradingDay reports whether t falls on a trading day in the market zone.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	t = t.In(c.loc)
	weekday := t.Weekday()
	if weekday == time.Saturday || weekday == time.Sunday {
		return false
	}
	if c.exchange != nil {
		return c.exchange.IsBusinessDay(t)
	}
	return true
}

// -----------------------------------------------------------------------------

// IsMarketOpen reports whether t is inside [open, close) on a trading day.
// The close instant itself is outside the window.
func (c *Calendar) IsMarketOpen(t time.Time) bool {
	t = t.In(c.loc)
	if !c.IsTradingDay(t) {
		return false
	}
	return !t.Before(c.OpenOn(t)) && t.Before(c.CloseOn(t))
}

// -----------------------------------------------------------------------------

// OpenOn returns the market open instant on t's calendar day.
func (c *Calendar) OpenOn(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), c.openHour, c.openMin, 0, 0, c.loc)
}

// -----------------------------------------------------------------------------

// CloseOn returns the market close instant on t's calendar day.
func (c *Calendar) CloseOn(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), c.closeHour, c.closeMin, 0, 0, c.loc)
}

// -----------------------------------------------------------------------------

// NextMarketOpen returns the open instant of the first trading day strictly
// after t's calendar day. It always advances at least one full day, even when
// called exactly at an open boundary.
func (c *Calendar) NextMarketOpen(t time.Time) time.Time {
	day := t.In(c.loc).AddDate(0, 0, 1)
	for !c.IsTradingDay(day) {
		day = day.AddDate(0, 0, 1)
	}
	return c.OpenOn(day)
}
