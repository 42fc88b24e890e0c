package recruit

import (
	"errors"
	"time"
)

// Application statuses. The only transitions are submitted -> screening and
// screening -> accepted/rejected; an accepted application produces a
// pending-applicant row for onboarding.
const (
	StatusSubmitted = "submitted"
	StatusScreening = "screening"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
)

// ErrBadTransition is returned for a status change the flow does not allow.
var ErrBadTransition = errors.New("status transition not allowed")

// Application is a job application received from an applicant.
type Application struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Position  string    `json:"position"`
	Depot     string    `json:"depot"`
	ResumeURL string    `json:"resume_url,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PendingApplicant is an accepted applicant awaiting onboarding; the bulk
// import or a manual hire consumes these rows.
type PendingApplicant struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	Position      string    `json:"position"`
	Depot         string    `json:"depot"`
	CreatedAt     time.Time `json:"created_at"`
}

// CanTransition reports whether a status change is allowed.
func CanTransition(from, to string) bool {
	switch from {
	case StatusSubmitted:
		return to == StatusScreening || to == StatusRejected
	case StatusScreening:
		return to == StatusAccepted || to == StatusRejected
	default:
		return false
	}
}
