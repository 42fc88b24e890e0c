package recruit

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an application id does not exist.
var ErrNotFound = errors.New("application not found")

// Repository persists applications and pending applicants.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new application in the submitted status.
func (r *Repository) Insert(ctx context.Context, a Application) (Application, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.Email = strings.ToLower(a.Email)
	a.Status = StatusSubmitted
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO applications (id, first_name, last_name, email, position, depot, resume_url, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at
	`, a.ID, a.FirstName, a.LastName, a.Email, a.Position, a.Depot, a.ResumeURL, a.Status)
	if err := row.Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		return Application{}, err
	}
	return a, nil
}

// Get returns one application.
func (r *Repository) Get(ctx context.Context, id string) (Application, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, position, depot, resume_url, status, created_at, updated_at
		FROM applications WHERE id = $1
	`, id)
	var a Application
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Position, &a.Depot,
		&a.ResumeURL, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	return a, err
}

// List returns applications, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status string) ([]Application, error) {
	query := `SELECT id, first_name, last_name, email, position, depot, resume_url, status, created_at, updated_at
		FROM applications`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Position, &a.Depot,
			&a.ResumeURL, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateStatus applies a transition, inserting a pending-applicant row in
// the same transaction when the application is accepted.
func (r *Repository) UpdateStatus(ctx context.Context, id, to string) (Application, error) {
	a, err := r.Get(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if !CanTransition(a.Status, to) {
		return Application{}, ErrBadTransition
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Application{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE applications SET status = $2, updated_at = NOW() WHERE id = $1`, id, to); err != nil {
		return Application{}, err
	}
	if to == StatusAccepted {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pending_applicants (id, application_id, first_name, last_name, email, position, depot)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, uuid.NewString(), a.ID, a.FirstName, a.LastName, a.Email, a.Position, a.Depot); err != nil {
			return Application{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Application{}, err
	}
	return r.Get(ctx, id)
}

// ListPending returns applicants awaiting onboarding.
func (r *Repository) ListPending(ctx context.Context) ([]PendingApplicant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, application_id, first_name, last_name, email, position, depot, created_at
		FROM pending_applicants ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingApplicant
	for rows.Next() {
		var p PendingApplicant
		if err := rows.Scan(&p.ID, &p.ApplicationID, &p.FirstName, &p.LastName, &p.Email,
			&p.Position, &p.Depot, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
