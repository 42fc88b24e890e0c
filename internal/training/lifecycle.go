package training

import "time"

// Phase is a training's lifecycle bucket. Buckets are derived from wall-clock
// time and the attendance map on every read; the only stored transition is
// the attendance save, so a training can never move out of Completed.
type Phase string

const (
	PhaseUpcoming          Phase = "upcoming"
	PhasePendingAttendance Phase = "pending_attendance"
	PhaseCompleted         Phase = "completed"
)

// EffectiveEnd returns the end timestamp used for classification. A training
// with no explicit end runs until the last second of its start date.
func EffectiveEnd(start time.Time, end *time.Time) time.Time {
	if end != nil && !end.IsZero() {
		return *end
	}
	y, m, d := start.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, start.Location())
}

// Classify buckets a training by the given instant.
//
// Upcoming while the effective end has not passed, regardless of attendance
// content; after that, PendingAttendance until a roster is saved, then
// Completed.
func Classify(now, start time.Time, end *time.Time, hasAttendance bool) Phase {
	if !EffectiveEnd(start, end).Before(now) {
		return PhaseUpcoming
	}
	if hasAttendance {
		return PhaseCompleted
	}
	return PhasePendingAttendance
}
