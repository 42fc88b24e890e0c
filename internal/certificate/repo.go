package certificate

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Record is one issued certificate. At most one live record exists per
// (training, employee) pair; regeneration purges and replaces.
type Record struct {
	ID           string    `json:"id"`
	TrainingID   string    `json:"training_id"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	URL          string    `json:"url"`
	StoragePath  string    `json:"storage_path"`
	IssuedBy     string    `json:"issued_by"`
	IssuedAt     time.Time `json:"issued_at"`
}

// Repository persists certificate records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// DeleteForPair removes prior records for a (training, employee) pair and
// returns their storage paths so the caller can purge the objects too.
func (r *Repository) DeleteForPair(ctx context.Context, trainingID, employeeID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		DELETE FROM generated_certificates
		WHERE training_id = $1 AND employee_id = $2
		RETURNING storage_path
	`, trainingID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Insert writes a new record.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO generated_certificates (id, training_id, employee_id, employee_name, url, storage_path, issued_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING issued_at
	`, rec.ID, rec.TrainingID, rec.EmployeeID, rec.EmployeeName, rec.URL, rec.StoragePath, rec.IssuedBy)
	if err := row.Scan(&rec.IssuedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ListForTraining returns the certificates issued for one training.
func (r *Repository) ListForTraining(ctx context.Context, trainingID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, training_id, employee_id, employee_name, url, storage_path, issued_by, issued_at
		FROM generated_certificates
		WHERE training_id = $1
		ORDER BY employee_name
	`, trainingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.TrainingID, &rec.EmployeeID, &rec.EmployeeName,
			&rec.URL, &rec.StoragePath, &rec.IssuedBy, &rec.IssuedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
