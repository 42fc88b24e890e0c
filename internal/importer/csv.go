package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Required header columns, case-insensitive. personal_email, source and
// status are recognized but optional.
var requiredColumns = []string{"email", "first_name", "last_name", "position", "depot", "role"}

var validRoles = map[string]bool{"admin": true, "hr": true, "hrc": true, "employee": true}
var validSources = map[string]bool{"applicant": true, "direct": true, "transfer": true}
var validStatuses = map[string]bool{"active": true, "inactive": true}

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Row is one parsed CSV line.
type Row struct {
	Line          int
	Email         string
	PersonalEmail string
	FirstName     string
	LastName      string
	Position      string
	Depot         string
	Role          string
	Source        string
	Status        string
}

// DisplayName mirrors how the employee directory renders names.
func (r Row) DisplayName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// RowError is a validation failure pinned to a line and field.
type RowError struct {
	Line   int
	Field  string
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s %s", e.Line, e.Field, e.Reason)
}

// Parse reads the CSV file. The first line is the header; all required
// columns must be present or the whole file is rejected. Quoted fields and
// both line-ending conventions are handled by the reader.
func Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	field := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if blank(record) {
			continue
		}
		// The reader skips blank lines, so take the real line number from
		// the record itself.
		line, _ := cr.FieldPos(0)
		rows = append(rows, Row{
			Line:          line,
			Email:         strings.ToLower(field(record, "email")),
			PersonalEmail: strings.ToLower(field(record, "personal_email")),
			FirstName:     field(record, "first_name"),
			LastName:      field(record, "last_name"),
			Position:      field(record, "position"),
			Depot:         field(record, "depot"),
			Role:          strings.ToLower(field(record, "role")),
			Source:        strings.ToLower(field(record, "source")),
			Status:        strings.ToLower(field(record, "status")),
		})
	}
	return rows, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Validate checks every row. A non-empty result blocks the entire import.
func Validate(rows []Row) []RowError {
	var errs []RowError
	add := func(line int, field, reason string) {
		errs = append(errs, RowError{Line: line, Field: field, Reason: reason})
	}
	for _, row := range rows {
		for field, val := range map[string]string{
			"email":      row.Email,
			"first_name": row.FirstName,
			"last_name":  row.LastName,
			"position":   row.Position,
			"depot":      row.Depot,
			"role":       row.Role,
		} {
			if val == "" {
				add(row.Line, field, "is required")
			}
		}
		if row.Email != "" && !emailShape.MatchString(row.Email) {
			add(row.Line, "email", fmt.Sprintf("%q is not a valid address", row.Email))
		}
		if row.Role != "" && !validRoles[row.Role] {
			add(row.Line, "role", fmt.Sprintf("%q is not a recognized role", row.Role))
		}
		if row.Source != "" && !validSources[row.Source] {
			add(row.Line, "source", fmt.Sprintf("%q is not a recognized source", row.Source))
		}
		if row.Status != "" && !validStatuses[row.Status] {
			add(row.Line, "status", fmt.Sprintf("%q is not a recognized status", row.Status))
		}
	}
	return errs
}

// SummarizeErrors surfaces the first five failures plus a remainder count.
func SummarizeErrors(errs []RowError) string {
	if len(errs) == 0 {
		return ""
	}
	shown := errs
	if len(shown) > 5 {
		shown = shown[:5]
	}
	parts := make([]string, len(shown))
	for i, e := range shown {
		parts[i] = e.Error()
	}
	msg := strings.Join(parts, "; ")
	if rest := len(errs) - len(shown); rest > 0 {
		msg += fmt.Sprintf(" (and %d more)", rest)
	}
	return msg
}
