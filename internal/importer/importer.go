package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"hris/internal/employee"
	"hris/internal/metrics"
)

// Row outcome statuses reported per line.
const (
	StatusCreated = "created"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// AccountStore creates the three records that make up one employee account.
type AccountStore interface {
	EmailTaken(ctx context.Context, email string) (bool, error)
	CreateIdentity(ctx context.Context, email, passwordHash, role string) (string, error)
	CreateProfile(ctx context.Context, p employee.Profile) error
	CreateEmployee(ctx context.Context, e employee.Employee) (employee.Employee, error)
}

// Mailer delivers the one-time credential mail.
type Mailer interface {
	SendCredentials(to, name, email, password string) error
}

// Detail is the per-row outcome. Password is the plaintext shown exactly
// once in this report; it is not stored anywhere else.
type Detail struct {
	Line     int    `json:"line"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
	Password string `json:"password,omitempty"`

	// mailTo is the personal address credentials are mailed to; falls back
	// to the account email. Not part of the report payload.
	mailTo string
}

// Report summarizes a completed import batch.
type Report struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
	Details []Detail `json:"details"`
}

// Service runs the bulk import: validate wholesale, then create accounts
// strictly in file order. Credential mail is a separate phase the caller
// starts after delivering the report.
type Service struct {
	store          AccountStore
	mailer         Mailer
	passwordLength int
	maxRows        int
	mailDelay      time.Duration
	sleep          func(time.Duration)
}

// NewService creates an importer. mailer may be nil when SMTP is not
// configured; accounts are still created and passwords still reported.
func NewService(store AccountStore, mailer Mailer, passwordLength, maxRows int, mailDelay time.Duration) *Service {
	if passwordLength < MinPasswordLength {
		passwordLength = MinPasswordLength
	}
	return &Service{
		store:          store,
		mailer:         mailer,
		passwordLength: passwordLength,
		maxRows:        maxRows,
		mailDelay:      mailDelay,
		sleep:          time.Sleep,
	}
}

// Run imports a CSV file. Any validation failure anywhere in the file blocks
// the whole import with zero accounts created. Once validated, each row
// fails independently: duplicates are skipped, creation errors are recorded
// and the batch continues. Run never sends mail; the returned report holds
// the only copy of each generated password, so it must reach the caller
// before the slow, throttled mail phase begins.
func (s *Service) Run(ctx context.Context, file io.Reader) (Report, error) {
	rows, err := Parse(file)
	if err != nil {
		return Report{}, err
	}
	if len(rows) == 0 {
		return Report{}, fmt.Errorf("file contains no data rows")
	}
	if s.maxRows > 0 && len(rows) > s.maxRows {
		return Report{}, fmt.Errorf("file has %d rows, limit is %d", len(rows), s.maxRows)
	}
	if errs := Validate(rows); len(errs) > 0 {
		return Report{}, fmt.Errorf("validation failed: %s", SummarizeErrors(errs))
	}

	report := Report{Errors: []string{}, Details: []Detail{}}
	seen := make(map[string]bool, len(rows))

	for _, row := range rows {
		detail := s.processRow(ctx, row, seen)
		switch detail.Status {
		case StatusCreated:
			report.Created++
			metrics.ImportRowsCreated.Inc()
		case StatusSkipped:
			report.Skipped++
			metrics.ImportRowsSkipped.Inc()
		default:
			report.Errors = append(report.Errors, fmt.Sprintf("line %d (%s): %s", row.Line, row.Email, detail.Reason))
			metrics.ImportRowsFailed.Inc()
		}
		report.Details = append(report.Details, detail)
	}
	return report, nil
}

func (s *Service) processRow(ctx context.Context, row Row, seen map[string]bool) Detail {
	detail := Detail{Line: row.Line, Email: row.Email, Name: row.DisplayName()}

	// Emails are compared post-normalization; two rows differing only in
	// case are the same account.
	if seen[row.Email] {
		detail.Status = StatusSkipped
		detail.Reason = "duplicate email earlier in this file"
		return detail
	}
	seen[row.Email] = true

	taken, err := s.store.EmailTaken(ctx, row.Email)
	if err != nil {
		detail.Status = StatusError
		detail.Reason = fmt.Sprintf("duplicate check failed: %v", err)
		return detail
	}
	if taken {
		detail.Status = StatusSkipped
		detail.Reason = "account already exists"
		return detail
	}

	password, err := GeneratePassword(s.passwordLength)
	if err != nil {
		detail.Status = StatusError
		detail.Reason = fmt.Sprintf("password generation failed: %v", err)
		return detail
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		detail.Status = StatusError
		detail.Reason = fmt.Sprintf("password hash failed: %v", err)
		return detail
	}

	// Three sequential writes; a failure abandons the row at that point
	// with no rollback of the earlier ones.
	userID, err := s.store.CreateIdentity(ctx, row.Email, string(hash), row.Role)
	if err != nil {
		detail.Status = StatusError
		detail.Reason = fmt.Sprintf("identity creation failed: %v", err)
		return detail
	}
	if err := s.store.CreateProfile(ctx, employee.Profile{
		UserID:    userID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Email:     row.Email,
		Role:      row.Role,
	}); err != nil {
		detail.Status = StatusError
		detail.Reason = fmt.Sprintf("profile creation failed: %v", err)
		return detail
	}
	if _, err := s.store.CreateEmployee(ctx, employee.Employee{
		FirstName:     row.FirstName,
		LastName:      row.LastName,
		Email:         row.Email,
		PersonalEmail: row.PersonalEmail,
		Position:      row.Position,
		Depot:         row.Depot,
		Role:          row.Role,
		Source:        row.Source,
		Status:        row.Status,
	}); err != nil {
		detail.Status = StatusError
		detail.Reason = fmt.Sprintf("employee record failed: %v", err)
		return detail
	}

	detail.Status = StatusCreated
	detail.Password = password
	detail.mailTo = row.PersonalEmail
	if detail.mailTo == "" {
		detail.mailTo = row.Email
	}
	return detail
}

// SendCredentialMails mails each created account its password, one at a time
// with a fixed delay to stay under provider rate limits. One failure does
// not stop the rest, and mail failures never fail the import. Meant to run
// in the background once the report has been written out.
func (s *Service) SendCredentialMails(details []Detail) {
	if s.mailer == nil {
		return
	}
	for _, d := range details {
		if d.Status != StatusCreated {
			continue
		}
		if err := s.mailer.SendCredentials(d.mailTo, d.Name, d.Email, d.Password); err != nil {
			metrics.MailsFailed.Inc()
			log.Printf("credential mail to %s failed: %v", d.mailTo, err)
		} else {
			metrics.MailsSent.Inc()
		}
		s.sleep(s.mailDelay)
	}
}
