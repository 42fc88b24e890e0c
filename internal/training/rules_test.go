package training

import (
	"errors"
	"testing"
	"time"
)

func TestValidateNoSunday(t *testing.T) {
	// 2026-08-30 is a Sunday; walk a full week around it.
	for day := 30; day <= 36; day++ {
		date := time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC)
		err := ValidateNoSunday(date.Format("2006-01-02"))
		if date.Weekday() == time.Sunday {
			if !errors.Is(err, ErrSunday) {
				t.Errorf("%s: want ErrSunday, got %v", date.Format("2006-01-02"), err)
			}
		} else if err != nil {
			t.Errorf("%s (%s): unexpected error %v", date.Format("2006-01-02"), date.Weekday(), err)
		}
	}
}

func TestValidateNoSundayBadInput(t *testing.T) {
	if err := ValidateNoSunday("not-a-date"); err == nil {
		t.Error("want error for malformed date")
	}
}

func TestValidateOfficeHours(t *testing.T) {
	cases := []struct {
		hhmm string
		ok   bool
	}{
		{"07:59", false},
		{"08:00", true},
		{"12:30", true},
		{"17:00", true},
		{"17:01", false},
		{"00:00", false},
		{"23:59", false},
	}
	for _, tc := range cases {
		err := ValidateOfficeHours(tc.hhmm)
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.hhmm, err)
		}
		if !tc.ok && !errors.Is(err, ErrOutsideOfficeHours) {
			t.Errorf("%s: want ErrOutsideOfficeHours, got %v", tc.hhmm, err)
		}
	}
}

func TestValidateFutureStart(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		date string
		hhmm string
		ok   bool
	}{
		{"future date any time", "2026-09-01", "08:00", true},
		{"today later", "2026-08-31", "10:01", true},
		{"today exactly now", "2026-08-31", "10:00", false},
		{"today earlier", "2026-08-31", "09:59", false},
		{"past date", "2026-08-30", "16:00", false},
	}
	for _, tc := range cases {
		err := ValidateFutureStart(tc.date, tc.hhmm, now)
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrNotInFuture) {
			t.Errorf("%s: want ErrNotInFuture, got %v", tc.name, err)
		}
	}
}
