package training

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"hris/internal/queue"
)

var (
	// ErrNoAttendees is returned when attendance is saved for an empty roster.
	ErrNoAttendees = errors.New("training has no attendees")
	// ErrUnknownAttendee is returned when a mark names someone off the roster.
	ErrUnknownAttendee = errors.New("attendance mark for unknown attendee")
	// ErrNotEnded is returned when attendance is saved before the session ends.
	ErrNotEnded = errors.New("training has not ended yet")
)

// Store is the persistence surface the service needs. *Repository satisfies it.
type Store interface {
	Insert(ctx context.Context, t Training) (Training, error)
	Get(ctx context.Context, id string) (Training, error)
	Update(ctx context.Context, t Training) (Training, error)
	SaveAttendance(ctx context.Context, id string, marks map[string]bool) error
	List(ctx context.Context) ([]Training, error)
	Delete(ctx context.Context, id string) error
}

// DefaultsFunc supplies the configured default signatories applied when a
// training is created without explicit ones.
type DefaultsFunc func(ctx context.Context) ([]Signatory, error)

// Service coordinates training writes and the post-attendance pipeline.
type Service struct {
	repo     Store
	q        queue.Queue
	defaults DefaultsFunc
}

// NewService creates a service backed by a store. q and defaults may be
// nil in tests.
func NewService(repo Store, q queue.Queue, defaults DefaultsFunc) *Service {
	return &Service{repo: repo, q: q, defaults: defaults}
}

// Create validates and persists a new training.
func (s *Service) Create(ctx context.Context, t Training, createdBy string) (Training, error) {
	if t.Title == "" {
		return Training{}, errors.New("title required")
	}
	if t.StartAt.IsZero() {
		return Training{}, errors.New("start time required")
	}
	if t.ScheduleType != ScheduleOnsite && t.ScheduleType != ScheduleOnline {
		return Training{}, fmt.Errorf("schedule_type must be %q or %q", ScheduleOnsite, ScheduleOnline)
	}
	if t.EndAt != nil && t.EndAt.Before(t.StartAt) {
		return Training{}, errors.New("end time before start time")
	}
	if len(t.Signatories) > MaxSignatories {
		return Training{}, fmt.Errorf("at most %d signatories allowed", MaxSignatories)
	}

	if len(t.Signatories) == 0 && s.defaults != nil {
		defaults, err := s.defaults(ctx)
		if err != nil {
			log.Printf("signature defaults lookup failed: %v", err)
		} else {
			t.Signatories = defaults
		}
	}

	t.Attendees = DedupeNames(t.Attendees)
	t.Attendance = nil
	t.IsActive = !EffectiveEnd(t.StartAt, t.EndAt).Before(time.Now())
	t.CreatedBy = createdBy
	return s.repo.Insert(ctx, t)
}

// Update rewrites editable fields. The attendance map is untouched.
func (s *Service) Update(ctx context.Context, t Training) (Training, error) {
	if t.ID == "" {
		return Training{}, errors.New("id required")
	}
	if t.ScheduleType != ScheduleOnsite && t.ScheduleType != ScheduleOnline {
		return Training{}, fmt.Errorf("schedule_type must be %q or %q", ScheduleOnsite, ScheduleOnline)
	}
	if t.EndAt != nil && t.EndAt.Before(t.StartAt) {
		return Training{}, errors.New("end time before start time")
	}
	if len(t.Signatories) > MaxSignatories {
		return Training{}, fmt.Errorf("at most %d signatories allowed", MaxSignatories)
	}
	return s.repo.Update(ctx, t)
}

// Get returns one training.
func (s *Service) Get(ctx context.Context, id string) (Training, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes a training.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// List returns trainings, optionally filtered to one lifecycle phase.
func (s *Service) List(ctx context.Context, phase Phase) ([]Training, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if phase == "" {
		return all, nil
	}
	now := time.Now()
	var out []Training
	for _, t := range all {
		if t.Phase(now) == phase {
			out = append(out, t)
		}
	}
	return out, nil
}

// SaveAttendance replaces the attendance map in a single update, deactivates
// the training and queues the certificate/mail pipeline. Queue failures are
// logged but do not undo the save; attendance and certificate issuance are
// separate phases.
func (s *Service) SaveAttendance(ctx context.Context, id string, marks map[string]bool) (Training, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return Training{}, err
	}
	if t.Phase(time.Now()) == PhaseUpcoming {
		return Training{}, ErrNotEnded
	}
	full, err := NormalizeMarks(t.Attendees, marks)
	if err != nil {
		return Training{}, err
	}
	if err := s.repo.SaveAttendance(ctx, id, full); err != nil {
		return Training{}, err
	}

	if s.q != nil {
		if err := s.q.Publish(ctx, queue.Message{Type: queue.TypeTrainingCompleted, Body: []byte(id)}); err != nil {
			log.Printf("queue publish failed for training %s: %v", id, err)
		}
	}
	return s.repo.Get(ctx, id)
}

// NormalizeMarks validates marks against the roster and fills any attendee
// without a mark as absent, so the stored map always covers the full roster.
func NormalizeMarks(attendees []string, marks map[string]bool) (map[string]bool, error) {
	if len(attendees) == 0 {
		return nil, ErrNoAttendees
	}
	roster := make(map[string]struct{}, len(attendees))
	for _, name := range attendees {
		roster[name] = struct{}{}
	}
	for name := range marks {
		if _, ok := roster[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAttendee, name)
		}
	}
	full := make(map[string]bool, len(attendees))
	for _, name := range attendees {
		full[name] = marks[name]
	}
	return full, nil
}
