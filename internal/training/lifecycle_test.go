package training

import (
	"testing"
	"time"
)

func ts(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestClassify(t *testing.T) {
	start := ts("2026-08-10 09:00")
	end := ts("2026-08-10 16:00")

	cases := []struct {
		name          string
		now           time.Time
		end           *time.Time
		hasAttendance bool
		want          Phase
	}{
		{"before start", ts("2026-08-09 12:00"), &end, false, PhaseUpcoming},
		{"mid session", ts("2026-08-10 12:00"), &end, false, PhaseUpcoming},
		{"exactly at end", ts("2026-08-10 16:00"), &end, false, PhaseUpcoming},
		{"after end no roster", ts("2026-08-10 16:01"), &end, false, PhasePendingAttendance},
		{"after end with roster", ts("2026-08-10 16:01"), &end, true, PhaseCompleted},
		// Attendance content is irrelevant while the end has not passed.
		{"future with stale roster", ts("2026-08-10 12:00"), &end, true, PhaseUpcoming},
	}
	for _, tc := range cases {
		if got := Classify(tc.now, start, tc.end, tc.hasAttendance); got != tc.want {
			t.Errorf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}
}

func TestClassifyNoEndRunsToEndOfDay(t *testing.T) {
	// Start 09:00 with no end: still upcoming at 23:59 the same day,
	// pending attendance at 00:01 the next day.
	start := ts("2026-08-10 09:00")

	if got := Classify(ts("2026-08-10 10:00"), start, nil, false); got != PhaseUpcoming {
		t.Errorf("10:00 same day: got %s", got)
	}
	if got := Classify(ts("2026-08-10 23:59"), start, nil, false); got != PhaseUpcoming {
		t.Errorf("23:59 same day: got %s", got)
	}
	if got := Classify(ts("2026-08-11 00:01"), start, nil, false); got != PhasePendingAttendance {
		t.Errorf("00:01 next day: got %s", got)
	}
}

func TestCompletedNeverReverts(t *testing.T) {
	start := ts("2026-08-10 09:00")
	end := ts("2026-08-10 16:00")
	// Once attendance exists and the end has passed, every later instant
	// classifies Completed.
	for _, now := range []time.Time{
		ts("2026-08-10 16:01"),
		ts("2026-08-11 09:00"),
		ts("2027-01-01 00:00"),
	} {
		if got := Classify(now, start, &end, true); got != PhaseCompleted {
			t.Errorf("at %s: got %s", now, got)
		}
	}
}

func TestPresentAttendees(t *testing.T) {
	tr := Training{
		Attendees:  []string{"Ana Cruz", "Ben Reyes", "Carla Lim"},
		Attendance: map[string]bool{"Ana Cruz": true, "Ben Reyes": false, "Carla Lim": true},
	}
	got := tr.PresentAttendees()
	if len(got) != 2 || got[0] != "Ana Cruz" || got[1] != "Carla Lim" {
		t.Errorf("got %v", got)
	}
}

func TestDedupeNames(t *testing.T) {
	got := DedupeNames([]string{"Ana Cruz", "Ben Reyes", "Ana Cruz"})
	if len(got) != 2 || got[0] != "Ana Cruz" || got[1] != "Ben Reyes" {
		t.Errorf("got %v", got)
	}
}
