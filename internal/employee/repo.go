package employee

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"hris/internal/training"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("employee not found")

// Repository persists the employee directory, auth identities, profiles,
// depots and signature defaults.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// List returns all employees ordered by name.
func (r *Repository) List(ctx context.Context) ([]Employee, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, email, personal_email, position, depot, role, source, status, created_at
		FROM employees
		ORDER BY first_name, last_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.PersonalEmail,
			&e.Position, &e.Depot, &e.Role, &e.Source, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// FindByDisplayName resolves an attendee display name to an employee record.
// Returns nil when no employee matches.
func (r *Repository) FindByDisplayName(ctx context.Context, name string) (*Employee, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, personal_email, position, depot, role, source, status, created_at
		FROM employees
		WHERE TRIM(first_name || ' ' || last_name) = $1
		LIMIT 1
	`, strings.TrimSpace(name))
	var e Employee
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.PersonalEmail,
		&e.Position, &e.Depot, &e.Role, &e.Source, &e.Status, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// EmailTaken reports whether an identity already exists for the email.
// Emails are compared lower-cased.
func (r *Repository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM identities WHERE email = $1`, strings.ToLower(email)).Scan(&n)
	return n > 0, err
}

// CreateIdentity inserts an auth account and returns its id.
func (r *Repository) CreateIdentity(ctx context.Context, email, passwordHash, role string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO identities (id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
	`, id, strings.ToLower(email), passwordHash, role)
	return id, err
}

// IdentityByEmail returns the account for a login attempt.
func (r *Repository) IdentityByEmail(ctx context.Context, email string) (Identity, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, created_at
		FROM identities WHERE email = $1
	`, strings.ToLower(email))
	var ident Identity
	err := row.Scan(&ident.ID, &ident.Email, &ident.PasswordHash, &ident.Role, &ident.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Identity{}, ErrNotFound
	}
	return ident, err
}

// CreateProfile inserts the profile row for an identity.
func (r *Repository) CreateProfile(ctx context.Context, p Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, first_name, last_name, email, role, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.UserID, p.FirstName, p.LastName, strings.ToLower(p.Email), p.Role, p.AvatarURL)
	return err
}

// CreateEmployee inserts a directory row.
func (r *Repository) CreateEmployee(ctx context.Context, e Employee) (Employee, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = StatusActive
	}
	e.Email = strings.ToLower(e.Email)
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO employees (id, first_name, last_name, email, personal_email, position, depot, role, source, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at
	`, e.ID, e.FirstName, e.LastName, e.Email, e.PersonalEmail, e.Position, e.Depot, e.Role, e.Source, e.Status)
	if err := row.Scan(&e.CreatedAt); err != nil {
		return Employee{}, err
	}
	return e, nil
}

// ListDepots returns all depot locations.
func (r *Repository) ListDepots(ctx context.Context) ([]Depot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, address FROM depot_locations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Depot
	for rows.Next() {
		var d Depot
		if err := rows.Scan(&d.ID, &d.Name, &d.Address); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SignatureDefaults returns the configured default signatories in slot order.
// Empty slots are skipped.
func (r *Repository) SignatureDefaults(ctx context.Context) ([]training.Signatory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, role, signature_url FROM signature_defaults
		WHERE name <> '' OR signature_url <> ''
		ORDER BY slot
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []training.Signatory
	for rows.Next() {
		var s training.Signatory
		if err := rows.Scan(&s.Name, &s.Role, &s.SignatureURL); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SaveSignatureDefaults replaces the default signatory slots wholesale.
func (r *Repository) SaveSignatureDefaults(ctx context.Context, defaults []training.Signatory) error {
	if len(defaults) > training.MaxSignatories {
		return errors.New("too many signature defaults")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM signature_defaults`); err != nil {
		return err
	}
	for i, s := range defaults {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO signature_defaults (slot, name, role, signature_url)
			VALUES ($1, $2, $3, $4)
		`, i+1, s.Name, s.Role, s.SignatureURL); err != nil {
			return err
		}
	}
	return tx.Commit()
}
