package training

import (
	"errors"
	"fmt"
	"time"
)

// Office hours accepted for training times, inclusive on both ends.
const (
	officeOpen  = 8 * 60  // 08:00 in minutes from midnight
	officeClose = 17 * 60 // 17:00
)

var (
	// ErrSunday is returned for dates falling on a Sunday.
	ErrSunday = errors.New("trainings cannot be scheduled on a Sunday")
	// ErrOutsideOfficeHours is returned for times outside 08:00-17:00.
	ErrOutsideOfficeHours = errors.New("time must be within office hours (08:00-17:00)")
	// ErrNotInFuture is returned when a same-day start time has already passed.
	ErrNotInFuture = errors.New("start time must be in the future")
)

// These checks gate form submission at the API layer only; rows written by
// other paths are not re-validated.

// ValidateNoSunday rejects ISO dates (YYYY-MM-DD) that fall on a Sunday.
func ValidateNoSunday(date string) error {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}
	if d.Weekday() == time.Sunday {
		return ErrSunday
	}
	return nil
}

// ValidateOfficeHours accepts times (HH:MM) within the closed interval
// [08:00, 17:00].
func ValidateOfficeHours(hhmm string) error {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	mins := t.Hour()*60 + t.Minute()
	if mins < officeOpen || mins > officeClose {
		return ErrOutsideOfficeHours
	}
	return nil
}

// ValidateFutureStart checks that the given time-on-date is strictly after
// now, but only when the date is today; any future date passes and any past
// date fails.
func ValidateFutureStart(date, hhmm string, now time.Time) error {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", hhmm, err)
	}

	today := now.Format("2006-01-02")
	switch {
	case date > today:
		return nil
	case date < today:
		return ErrNotInFuture
	}

	start := time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if !start.After(now) {
		return ErrNotInFuture
	}
	return nil
}
