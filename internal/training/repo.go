package training

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a training id does not exist.
var ErrNotFound = errors.New("training not found")

// Repository persists trainings in Postgres. Attendees, attendance and
// signatories live in jsonb columns.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const trainingColumns = `id, title, venue, start_at, end_at, description, schedule_type,
	image_url, certificate_title, signatories, attendees, attendance, is_active,
	created_by, created_at, updated_at`

// Insert writes a new training.
func (r *Repository) Insert(ctx context.Context, t Training) (Training, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	signatories, attendees, attendance, err := marshalJSONCols(t)
	if err != nil {
		return Training{}, err
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO trainings (id, title, venue, start_at, end_at, description, schedule_type,
			image_url, certificate_title, signatories, attendees, attendance, is_active, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at, updated_at
	`, t.ID, t.Title, t.Venue, t.StartAt, t.EndAt, t.Description, t.ScheduleType,
		t.ImageURL, t.CertificateTitle, signatories, attendees, attendance, t.IsActive, t.CreatedBy)
	if err := row.Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		return Training{}, err
	}
	return t, nil
}

// Get returns a single training by id.
func (r *Repository) Get(ctx context.Context, id string) (Training, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+trainingColumns+` FROM trainings WHERE id = $1`, id)
	t, err := scanTraining(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Training{}, ErrNotFound
	}
	return t, err
}

// Update rewrites the editable fields of a training, attendee list included.
// The attendance map is not touched here; SaveAttendance is its only writer.
func (r *Repository) Update(ctx context.Context, t Training) (Training, error) {
	signatories, err := json.Marshal(t.Signatories)
	if err != nil {
		return Training{}, fmt.Errorf("marshal signatories: %w", err)
	}
	attendees, err := json.Marshal(DedupeNames(t.Attendees))
	if err != nil {
		return Training{}, fmt.Errorf("marshal attendees: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE trainings
		SET title=$2, venue=$3, start_at=$4, end_at=$5, description=$6, schedule_type=$7,
			image_url=$8, certificate_title=$9, signatories=$10, attendees=$11, updated_at=NOW()
		WHERE id = $1
	`, t.ID, t.Title, t.Venue, t.StartAt, t.EndAt, t.Description, t.ScheduleType,
		t.ImageURL, t.CertificateTitle, signatories, attendees)
	if err != nil {
		return Training{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Training{}, ErrNotFound
	}
	return r.Get(ctx, t.ID)
}

// SaveAttendance replaces the attendance map wholesale and deactivates the
// training in the same statement.
func (r *Repository) SaveAttendance(ctx context.Context, id string, marks map[string]bool) error {
	attendance, err := json.Marshal(marks)
	if err != nil {
		return fmt.Errorf("marshal attendance: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE trainings
		SET attendance = $2, is_active = FALSE, updated_at = NOW()
		WHERE id = $1
	`, id, attendance)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all trainings newest start first.
func (r *Repository) List(ctx context.Context) ([]Training, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+trainingColumns+` FROM trainings ORDER BY start_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Training
	for rows.Next() {
		t, err := scanTraining(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes a training. Explicit admin action only.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trainings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTraining(row rowScanner) (Training, error) {
	var (
		t           Training
		endAt       sql.NullTime
		signatories []byte
		attendees   []byte
		attendance  []byte
	)
	err := row.Scan(&t.ID, &t.Title, &t.Venue, &t.StartAt, &endAt, &t.Description,
		&t.ScheduleType, &t.ImageURL, &t.CertificateTitle, &signatories, &attendees,
		&attendance, &t.IsActive, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return Training{}, err
	}
	if endAt.Valid {
		end := endAt.Time
		t.EndAt = &end
	}
	if len(signatories) > 0 {
		if err := json.Unmarshal(signatories, &t.Signatories); err != nil {
			return Training{}, fmt.Errorf("unmarshal signatories: %w", err)
		}
	}
	if len(attendees) > 0 {
		if err := json.Unmarshal(attendees, &t.Attendees); err != nil {
			return Training{}, fmt.Errorf("unmarshal attendees: %w", err)
		}
	}
	if len(attendance) > 0 {
		if err := json.Unmarshal(attendance, &t.Attendance); err != nil {
			return Training{}, fmt.Errorf("unmarshal attendance: %w", err)
		}
	}
	return t, nil
}

func marshalJSONCols(t Training) (signatories, attendees, attendance []byte, err error) {
	if len(t.Signatories) > MaxSignatories {
		return nil, nil, nil, fmt.Errorf("at most %d signatories allowed", MaxSignatories)
	}
	if signatories, err = json.Marshal(t.Signatories); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal signatories: %w", err)
	}
	if attendees, err = json.Marshal(DedupeNames(t.Attendees)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal attendees: %w", err)
	}
	marks := t.Attendance
	if marks == nil {
		marks = map[string]bool{}
	}
	if attendance, err = json.Marshal(marks); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal attendance: %w", err)
	}
	return signatories, attendees, attendance, nil
}
