package employee

import (
	"strings"
	"time"
)

// Enumerations for employee records. Source records how the person entered
// the company; status whether they are currently employed.
const (
	SourceApplicant = "applicant"
	SourceDirect    = "direct"
	SourceTransfer  = "transfer"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Employee is a row in the employee directory. Email is the identity key and
// is stored lower-cased.
type Employee struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	PersonalEmail string    `json:"personal_email,omitempty"`
	Position      string    `json:"position"`
	Depot         string    `json:"depot"`
	Role          string    `json:"role"`
	Source        string    `json:"source,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// DisplayName is the name trainings reference attendees by.
func (e Employee) DisplayName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Identity is an auth account. The plaintext password never lands here; only
// its bcrypt hash is stored.
type Identity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile carries the display fields the UI reads for a signed-in account.
type Profile struct {
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Depot is a physical operating location.
type Depot struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}
