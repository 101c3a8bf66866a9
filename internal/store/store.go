// Package store persists bisection records in a SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rustbisect/bisectd/pkg/bisect"
)

// Store is the full persistence interface, covering both the worker's writes and the
// query API's reads.
type Store interface {
	bisect.Store

	// Get returns the record with the given ID, or nil if no such record exists.
	Get(id uuid.UUID) (*bisect.Bisection, error)
	// List returns all records.
	List() ([]bisect.Bisection, error)

	Close() error
}

// SQLite implements Store on a single SQLite database file.
//
// A single mutex serializes all access, since the one connection is shared between the
// worker and the request handlers. With at most one job in flight the write rate is low
// enough for this not to matter.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite opens the database at the given path, creating it and its schema if necessary.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to open sqlite database at %s", path), err)
	}

	store := &SQLite{db: db}
	if err := store.setup(); err != nil {
		db.Close()
		return nil, errors.Join(fmt.Errorf("failed to set up sqlite schema"), err)
	}

	return store, nil
}

func (s *SQLite) setup() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS bisect (
		job_id TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		output TEXT -- excerpt or summary depending on the status
	)`)
	return err
}

// Insert persists a new record. It fails if a record with the same ID already exists.
func (s *SQLite) Insert(record *bisect.Bisection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	discriminant, output := encodeStatus(record.Status)
	_, err := s.db.Exec(
		`INSERT INTO bisect (job_id, code, status, output) VALUES (?, ?, ?, ?)`,
		record.ID.String(), record.Code, discriminant, output,
	)
	if err != nil {
		return errors.Join(fmt.Errorf("failed to insert bisection %s", record.ID), err)
	}
	return nil
}

// UpdateStatus overwrites only the status of the record with the given ID. It is not
// conditioned on the current status, the single-writer discipline of the worker keeps
// transitions one-directional.
func (s *SQLite) UpdateStatus(id uuid.UUID, status bisect.BisectStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	discriminant, output := encodeStatus(status)
	_, err := s.db.Exec(
		`UPDATE bisect SET status = ?, output = ? WHERE job_id = ?`,
		discriminant, output, id.String(),
	)
	if err != nil {
		return errors.Join(fmt.Errorf("failed to update status of bisection %s", id), err)
	}
	return nil
}

// Get returns the record with the given ID, or nil if no such record exists.
func (s *SQLite) Get(id uuid.UUID) (*bisect.Bisection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(
		`SELECT job_id, code, status, output FROM bisect WHERE job_id = ?`,
		id.String(),
	)

	record, err := scanBisection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to get bisection %s", id), err)
	}
	return record, nil
}

// List returns all records in the table's natural order.
func (s *SQLite) List() ([]bisect.Bisection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT job_id, code, status, output FROM bisect`)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to list bisections"), err)
	}
	defer rows.Close()

	var records []bisect.Bisection
	for rows.Next() {
		record, err := scanBisection(rows)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to scan bisection"), err)
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanBisection(row scannable) (*bisect.Bisection, error) {
	var (
		id           string
		code         string
		discriminant int
		output       sql.NullString
	)
	if err := row.Scan(&id, &code, &discriminant, &output); err != nil {
		return nil, err
	}

	jobID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%s is not a valid job id", id), err)
	}

	status, err := decodeStatus(discriminant, output)
	if err != nil {
		return nil, err
	}

	return &bisect.Bisection{
		ID:     jobID,
		Code:   code,
		Status: status,
	}, nil
}

// encodeStatus maps a status onto the discriminant and payload columns.
func encodeStatus(status bisect.BisectStatus) (int, sql.NullString) {
	switch status.Kind {
	case bisect.StatusError:
		return 1, sql.NullString{String: status.Output, Valid: true}
	case bisect.StatusSuccess:
		return 2, sql.NullString{String: status.Output, Valid: true}
	}
	return 0, sql.NullString{}
}

func decodeStatus(discriminant int, output sql.NullString) (bisect.BisectStatus, error) {
	switch discriminant {
	case 0:
		return bisect.InProgressStatus(), nil
	case 1:
		return bisect.ErrorStatus(output.String), nil
	case 2:
		return bisect.SuccessStatus(output.String), nil
	}
	return bisect.BisectStatus{}, fmt.Errorf("%d is not a valid status discriminant", discriminant)
}
