package certificate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"hris/internal/cloudinary"
	"hris/internal/employee"
	"hris/internal/training"
)

type fakeRecords struct {
	live    map[string]Record // keyed by trainingID+"/"+employeeID
	deleted []string
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{live: map[string]Record{}}
}

func (f *fakeRecords) DeleteForPair(_ context.Context, trainingID, employeeID string) ([]string, error) {
	key := trainingID + "/" + employeeID
	rec, ok := f.live[key]
	if !ok {
		return nil, nil
	}
	delete(f.live, key)
	f.deleted = append(f.deleted, rec.StoragePath)
	return []string{rec.StoragePath}, nil
}

func (f *fakeRecords) Insert(_ context.Context, rec Record) (Record, error) {
	rec.ID = fmt.Sprintf("rec-%d", len(f.live)+1)
	rec.IssuedAt = time.Now()
	f.live[rec.TrainingID+"/"+rec.EmployeeID] = rec
	return rec, nil
}

type fakeStorage struct {
	uploads   int
	destroyed []string
	failFor   string
}

func (f *fakeStorage) UploadRaw(data []byte, filename string) (*cloudinary.UploadResult, error) {
	if f.failFor != "" && filename == f.failFor {
		return nil, errors.New("upload refused")
	}
	f.uploads++
	return &cloudinary.UploadResult{
		PublicID:  "hris/" + filename,
		SecureURL: "https://cdn.example/" + filename,
	}, nil
}

func (f *fakeStorage) Destroy(publicID, resourceType string) error {
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

type fakeDirectory map[string]*employee.Employee

func (f fakeDirectory) FindByDisplayName(_ context.Context, name string) (*employee.Employee, error) {
	return f[name], nil
}

func completedTraining() training.Training {
	end := time.Date(2026, 8, 10, 16, 0, 0, 0, time.UTC)
	return training.Training{
		ID:           "t1",
		Title:        "Defensive Driving",
		Venue:        "Main Depot",
		StartAt:      end.Add(-6 * time.Hour),
		EndAt:        &end,
		ScheduleType: training.ScheduleOnsite,
		Attendees:    []string{"Ana Cruz", "Ben Reyes", "Carla Lim"},
		Attendance:   map[string]bool{"Ana Cruz": true, "Ben Reyes": false, "Carla Lim": true},
	}
}

func testDirectory() fakeDirectory {
	return fakeDirectory{
		"Ana Cruz":  {ID: "e1", FirstName: "Ana", LastName: "Cruz", Email: "ana@corp.test", PersonalEmail: "ana@home.test"},
		"Carla Lim": {ID: "e3", FirstName: "Carla", LastName: "Lim", Email: "carla@corp.test"},
	}
}

func TestIssueForTrainingOnlyPresent(t *testing.T) {
	records := newFakeRecords()
	storage := &fakeStorage{}
	svc := NewService(records, storage, testDirectory(), "Each-R Logistics")

	report := svc.IssueForTraining(context.Background(), completedTraining(), "hr@corp.test")
	if len(report.Issued) != 2 || len(report.Failed) != 0 {
		t.Fatalf("want 2 issued 0 failed, got %d/%d %v", len(report.Issued), len(report.Failed), report.Failed)
	}
	// Absent attendee gets nothing.
	for _, issued := range report.Issued {
		if issued.Name == "Ben Reyes" {
			t.Error("absent attendee received a certificate")
		}
	}
	// Personal email preferred, company email as fallback.
	if report.Issued[0].Email != "ana@home.test" || report.Issued[1].Email != "carla@corp.test" {
		t.Errorf("wrong notification emails: %+v", report.Issued)
	}
}

func TestIssueForTrainingRegenerationReplaces(t *testing.T) {
	records := newFakeRecords()
	storage := &fakeStorage{}
	svc := NewService(records, storage, testDirectory(), "Each-R Logistics")

	tr := completedTraining()
	svc.IssueForTraining(context.Background(), tr, "hr@corp.test")
	svc.IssueForTraining(context.Background(), tr, "hr@corp.test")

	// One live record per pair after regeneration, and the stale objects
	// were destroyed.
	if len(records.live) != 2 {
		t.Errorf("want 2 live records, got %d", len(records.live))
	}
	if len(storage.destroyed) != 2 {
		t.Errorf("want 2 destroyed objects, got %v", storage.destroyed)
	}
}

func TestIssueForTrainingIsolatesFailures(t *testing.T) {
	records := newFakeRecords()
	storage := &fakeStorage{failFor: "certificate-t1-e1.pdf"}
	svc := NewService(records, storage, testDirectory(), "Each-R Logistics")

	report := svc.IssueForTraining(context.Background(), completedTraining(), "hr@corp.test")
	if len(report.Issued) != 1 || len(report.Failed) != 1 {
		t.Fatalf("want 1 issued 1 failed, got %d/%d", len(report.Issued), len(report.Failed))
	}
	if report.Failed[0].Name != "Ana Cruz" {
		t.Errorf("wrong failure: %+v", report.Failed[0])
	}
	if report.Issued[0].Name != "Carla Lim" {
		t.Errorf("remaining attendee not processed: %+v", report.Issued[0])
	}
}

func TestIssueForTrainingUnknownAttendee(t *testing.T) {
	records := newFakeRecords()
	storage := &fakeStorage{}
	dir := testDirectory()
	delete(dir, "Carla Lim")
	svc := NewService(records, storage, dir, "hr@corp.test")

	report := svc.IssueForTraining(context.Background(), completedTraining(), "hr@corp.test")
	if len(report.Issued) != 1 || len(report.Failed) != 1 {
		t.Fatalf("want 1 issued 1 failed, got %d/%d", len(report.Issued), len(report.Failed))
	}
}
