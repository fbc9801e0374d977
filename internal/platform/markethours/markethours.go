// Package markethours computes the market-open lock boundary that freezes
// a date's prediction record.
package markethours

import (
	"fmt"
	"time"
	// Embed tzdata for environments without zoneinfo.
	_ "time/tzdata"

	"github.com/aipulse/pulse/internal/core/domain"
	cerr "github.com/aipulse/pulse/internal/core/errors"
)

// Market session times in the reference timezone. The original reference
// is US equities viewed from GMT: open 14:30, close 21:00.
const (
	openHour    = 14
	openMinute  = 30
	closeHour   = 21
	closeMinute = 0
)

// Boundary evaluates market-open times in a fixed IANA reference timezone.
type Boundary struct {
	loc *time.Location
}

// New resolves the reference timezone. An empty name defaults to UTC.
func New(tz string) (Boundary, error) {
	if tz == "" {
		return Boundary{loc: time.UTC}, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Boundary{}, fmt.Errorf("invalid market timezone: %w", err)
	}

	return Boundary{loc: loc}, nil
}

// IsMarketOpen reports whether the market session is in progress at the
// given instant: weekdays between open and close in the reference zone.
func (b Boundary) IsMarketOpen(at time.Time) bool {
	local := at.In(b.loc)

	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}

	minutes := local.Hour()*60 + local.Minute()
	open := openHour*60 + openMinute
	closed := closeHour*60 + closeMinute

	return minutes >= open && minutes < closed
}

// ShouldLock reports whether a prediction for the given date is past its
// lock boundary at the given instant. Past dates are always locked, future
// dates never; today locks once the time of day reaches market open.
func (b Boundary) ShouldLock(date string, at time.Time) (bool, error) {
	predDate, err := time.ParseInLocation(domain.DateLayout, date, b.loc)
	if err != nil {
		return false, fmt.Errorf("%w: %q", cerr.ErrInvalidDate, date)
	}

	local := at.In(b.loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, b.loc)

	if predDate.Before(today) {
		return true, nil
	}

	if predDate.After(today) {
		return false, nil
	}

	minutes := local.Hour()*60 + local.Minute()

	return minutes >= openHour*60+openMinute, nil
}

// Today returns the current calendar date in the reference timezone.
func (b Boundary) Today(at time.Time) string {
	return at.In(b.loc).Format(domain.DateLayout)
}
