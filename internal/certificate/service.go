package certificate

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"hris/internal/cloudinary"
	"hris/internal/employee"
	"hris/internal/metrics"
	"hris/internal/training"
)

// Records is the persistence the issue flow needs.
type Records interface {
	DeleteForPair(ctx context.Context, trainingID, employeeID string) ([]string, error)
	Insert(ctx context.Context, rec Record) (Record, error)
}

// Storage stores rendered documents and purges replaced ones.
type Storage interface {
	UploadRaw(data []byte, filename string) (*cloudinary.UploadResult, error)
	Destroy(publicID, resourceType string) error
}

// Directory resolves attendee display names to employees.
type Directory interface {
	FindByDisplayName(ctx context.Context, name string) (*employee.Employee, error)
}

// Issued is a successfully generated certificate.
type Issued struct {
	Name       string `json:"name"`
	EmployeeID string `json:"employee_id"`
	Email      string `json:"email,omitempty"`
	URL        string `json:"url"`
}

// Failure records one attendee whose certificate could not be produced.
type Failure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Report partitions a batch into issued and failed attendees.
type Report struct {
	Issued []Issued  `json:"issued"`
	Failed []Failure `json:"failed"`
}

// Service issues certificates for completed trainings.
type Service struct {
	records     Records
	storage     Storage
	dir         Directory
	institution string
	fetch       func(ctx context.Context, url string) ([]byte, error)
}

// NewService creates a service. institution is the header/institution line
// printed on every certificate.
func NewService(records Records, storage Storage, dir Directory, institution string) *Service {
	httpClient := &http.Client{Timeout: 20 * time.Second}
	return &Service{
		records:     records,
		storage:     storage,
		dir:         dir,
		institution: institution,
		fetch: func(ctx context.Context, url string) ([]byte, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return nil, err
			}
			resp, err := httpClient.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
			}
			return io.ReadAll(resp.Body)
		},
	}
}

// IssueForTraining generates one certificate per attendee marked present.
// Each attendee is processed independently: prior records and objects for the
// pair are purged first, so re-running after fixing a signature replaces
// rather than duplicates. One attendee's failure never stops the rest.
func (s *Service) IssueForTraining(ctx context.Context, t training.Training, issuedBy string) Report {
	var report Report
	for _, name := range t.PresentAttendees() {
		issued, err := s.issueOne(ctx, t, name, issuedBy)
		if err != nil {
			metrics.CertificatesFailed.Inc()
			report.Failed = append(report.Failed, Failure{Name: name, Reason: err.Error()})
			continue
		}
		metrics.CertificatesIssued.Inc()
		report.Issued = append(report.Issued, issued)
	}
	return report
}

func (s *Service) issueOne(ctx context.Context, t training.Training, name, issuedBy string) (Issued, error) {
	emp, err := s.dir.FindByDisplayName(ctx, name)
	if err != nil {
		return Issued{}, fmt.Errorf("directory lookup: %w", err)
	}
	if emp == nil {
		return Issued{}, fmt.Errorf("%q is not in the employee directory", name)
	}

	// Purge any prior certificate for this pair before rendering a new one.
	paths, err := s.records.DeleteForPair(ctx, t.ID, emp.ID)
	if err != nil {
		return Issued{}, fmt.Errorf("purge prior records: %w", err)
	}
	for _, p := range paths {
		if err := s.storage.Destroy(p, "raw"); err != nil {
			log.Printf("destroy stale certificate object %s: %v", p, err)
		}
	}

	data, err := s.buildData(ctx, t, emp.DisplayName())
	if err != nil {
		return Issued{}, err
	}
	pdf, err := Render(data)
	if err != nil {
		return Issued{}, err
	}

	filename := fmt.Sprintf("certificate-%s-%s.pdf", t.ID, emp.ID)
	up, err := s.storage.UploadRaw(pdf, filename)
	if err != nil {
		return Issued{}, fmt.Errorf("upload: %w", err)
	}

	rec, err := s.records.Insert(ctx, Record{
		TrainingID:   t.ID,
		EmployeeID:   emp.ID,
		EmployeeName: emp.DisplayName(),
		URL:          up.SecureURL,
		StoragePath:  up.PublicID,
		IssuedBy:     issuedBy,
	})
	if err != nil {
		return Issued{}, fmt.Errorf("record insert: %w", err)
	}

	email := emp.PersonalEmail
	if email == "" {
		email = emp.Email
	}
	return Issued{Name: name, EmployeeID: emp.ID, Email: email, URL: rec.URL}, nil
}

func (s *Service) buildData(ctx context.Context, t training.Training, recipient string) (Data, error) {
	completedOn := time.Now()
	if t.EndAt != nil && !t.EndAt.IsZero() {
		completedOn = *t.EndAt
	}

	blocks := make([]SignatoryBlock, 0, len(t.Signatories))
	for _, sig := range t.Signatories {
		block := SignatoryBlock{Name: sig.Name, Role: sig.Role}
		if sig.SignatureURL != "" {
			img, err := s.fetch(ctx, sig.SignatureURL)
			if err != nil {
				return Data{}, fmt.Errorf("signature image for %s: %w", sig.Name, err)
			}
			block.Signature = img
			block.SignatureFormat = signatureFormat(sig.SignatureURL)
		}
		blocks = append(blocks, block)
	}

	return Data{
		Institution:      s.institution,
		CertificateTitle: strings.TrimSpace(t.CertificateTitle),
		RecipientName:    recipient,
		TrainingTitle:    t.Title,
		Venue:            t.Venue,
		CompletedOn:      completedOn,
		Signatories:      blocks,
	}, nil
}
