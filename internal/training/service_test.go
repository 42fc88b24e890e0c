package training

import (
	"context"
	"errors"
	"testing"
	"time"

	"hris/internal/queue"
)

type fakeStore struct {
	trainings map[string]Training
	saved     map[string]map[string]bool
}

func newFakeStore(ts ...Training) *fakeStore {
	f := &fakeStore{trainings: map[string]Training{}, saved: map[string]map[string]bool{}}
	for _, t := range ts {
		f.trainings[t.ID] = t
	}
	return f
}

func (f *fakeStore) Insert(_ context.Context, t Training) (Training, error) {
	f.trainings[t.ID] = t
	return t, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (Training, error) {
	t, ok := f.trainings[id]
	if !ok {
		return Training{}, ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) Update(_ context.Context, t Training) (Training, error) {
	f.trainings[t.ID] = t
	return t, nil
}

func (f *fakeStore) SaveAttendance(_ context.Context, id string, marks map[string]bool) error {
	t, ok := f.trainings[id]
	if !ok {
		return ErrNotFound
	}
	t.Attendance = marks
	t.IsActive = false
	f.trainings[id] = t
	f.saved[id] = marks
	return nil
}

func (f *fakeStore) List(_ context.Context) ([]Training, error) {
	out := make([]Training, 0, len(f.trainings))
	for _, t := range f.trainings {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	delete(f.trainings, id)
	return nil
}

type fakeQueue struct {
	published []queue.Message
}

func (f *fakeQueue) Publish(_ context.Context, msg queue.Message) error {
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeQueue) Consume(context.Context) (<-chan queue.Message, error) {
	return nil, nil
}

func TestSaveAttendanceRejectsBeforeEnd(t *testing.T) {
	end := time.Now().Add(2 * time.Hour)
	store := newFakeStore(Training{
		ID:        "t1",
		Title:     "Defensive Driving",
		StartAt:   time.Now().Add(time.Hour),
		EndAt:     &end,
		Attendees: []string{"Ana Cruz"},
		IsActive:  true,
	})
	q := &fakeQueue{}
	svc := NewService(store, q, nil)

	_, err := svc.SaveAttendance(context.Background(), "t1", map[string]bool{"Ana Cruz": true})
	if !errors.Is(err, ErrNotEnded) {
		t.Fatalf("want ErrNotEnded, got %v", err)
	}
	if len(store.saved) != 0 {
		t.Error("attendance written for a session that has not ended")
	}
	if len(q.published) != 0 {
		t.Error("pipeline job queued for a session that has not ended")
	}
}

func TestSaveAttendanceDeactivatesAndQueues(t *testing.T) {
	end := time.Now().Add(-time.Hour)
	store := newFakeStore(Training{
		ID:        "t1",
		Title:     "Defensive Driving",
		StartAt:   time.Now().Add(-3 * time.Hour),
		EndAt:     &end,
		Attendees: []string{"Ana Cruz", "Ben Reyes"},
		IsActive:  true,
	})
	q := &fakeQueue{}
	svc := NewService(store, q, nil)

	saved, err := svc.SaveAttendance(context.Background(), "t1", map[string]bool{"Ana Cruz": true})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.IsActive {
		t.Error("training still active after attendance save")
	}
	if !saved.Attendance["Ana Cruz"] || saved.Attendance["Ben Reyes"] {
		t.Errorf("stored marks wrong: %v", saved.Attendance)
	}
	if len(q.published) != 1 || q.published[0].Type != queue.TypeTrainingCompleted || string(q.published[0].Body) != "t1" {
		t.Errorf("pipeline job: %+v", q.published)
	}
}

func TestUpdateRejectsEndBeforeStart(t *testing.T) {
	store := newFakeStore(Training{ID: "t1", Title: "Defensive Driving", StartAt: time.Now(), ScheduleType: ScheduleOnsite})
	svc := NewService(store, nil, nil)

	start := time.Now()
	end := start.Add(-time.Hour)
	_, err := svc.Update(context.Background(), Training{
		ID:           "t1",
		Title:        "Defensive Driving",
		StartAt:      start,
		EndAt:        &end,
		ScheduleType: ScheduleOnsite,
	})
	if err == nil {
		t.Fatal("want error for end before start")
	}
	if got := store.trainings["t1"]; got.EndAt != nil {
		t.Errorf("invalid edit reached the store: %+v", got)
	}
}

func TestNormalizeMarks(t *testing.T) {
	roster := []string{"Ana Cruz", "Ben Reyes", "Carla Lim"}

	full, err := NormalizeMarks(roster, map[string]bool{"Ana Cruz": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(full) != 3 {
		t.Fatalf("want full roster coverage, got %v", full)
	}
	if !full["Ana Cruz"] || full["Ben Reyes"] || full["Carla Lim"] {
		t.Errorf("unmarked attendees must default to absent: %v", full)
	}
}

func TestNormalizeMarksIdempotent(t *testing.T) {
	roster := []string{"Ana Cruz", "Ben Reyes"}
	marks := map[string]bool{"Ana Cruz": true, "Ben Reyes": true}

	first, err := NormalizeMarks(roster, marks)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NormalizeMarks(roster, first)
	if err != nil {
		t.Fatal(err)
	}
	for name, v := range first {
		if second[name] != v {
			t.Errorf("%s changed between passes", name)
		}
	}
}

func TestNormalizeMarksRejects(t *testing.T) {
	if _, err := NormalizeMarks(nil, map[string]bool{"Ana Cruz": true}); !errors.Is(err, ErrNoAttendees) {
		t.Errorf("empty roster: got %v", err)
	}
	if _, err := NormalizeMarks([]string{"Ana Cruz"}, map[string]bool{"Nobody": true}); !errors.Is(err, ErrUnknownAttendee) {
		t.Errorf("unknown attendee: got %v", err)
	}
}
