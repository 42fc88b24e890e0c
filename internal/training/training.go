package training

import (
	"time"
)

// Schedule types.
const (
	ScheduleOnsite = "onsite"
	ScheduleOnline = "online"
)

// MaxSignatories is the number of signature blocks a certificate can carry.
const MaxSignatories = 4

// Signatory is one of up to four named roles whose name/signature image may
// appear on a generated certificate.
type Signatory struct {
	Name         string `json:"name"`
	Role         string `json:"role"`
	SignatureURL string `json:"signature_url,omitempty"`
}

// Training is a scheduled training session. Attendees are plain display names
// resolved against the employee directory only when contact details are
// needed. Attendance stays empty until the roster is saved once; after that
// it holds a flag for every attendee.
type Training struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Venue            string          `json:"venue"`
	StartAt          time.Time       `json:"start_at"`
	EndAt            *time.Time      `json:"end_at,omitempty"`
	Description      string          `json:"description,omitempty"`
	ScheduleType     string          `json:"schedule_type"`
	ImageURL         string          `json:"image_url,omitempty"`
	CertificateTitle string          `json:"certificate_title,omitempty"`
	Signatories      []Signatory     `json:"signatories,omitempty"`
	Attendees        []string        `json:"attendees"`
	Attendance       map[string]bool `json:"attendance,omitempty"`
	IsActive         bool            `json:"is_active"`
	CreatedBy        string          `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// HasAttendance reports whether the roster has been saved at least once.
func (t Training) HasAttendance() bool {
	return len(t.Attendance) > 0
}

// Phase returns the lifecycle bucket at the given instant.
func (t Training) Phase(now time.Time) Phase {
	return Classify(now, t.StartAt, t.EndAt, t.HasAttendance())
}

// PresentAttendees returns the attendees marked present, in roster order.
func (t Training) PresentAttendees() []string {
	var out []string
	for _, name := range t.Attendees {
		if t.Attendance[name] {
			out = append(out, name)
		}
	}
	return out
}

// DedupeNames removes duplicate display names preserving first occurrence.
func DedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
