// Package store - SQLite persistence for video analysis results.
package store

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Analysis status values.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Analysis is one persisted analysis record.
type Analysis struct {
	ID             int64     `json:"id"`
	Filename       string    `json:"filename"`
	MotionDetected bool      `json:"motion_detected"`
	FramesAnalyzed int       `json:"frames_analyzed"`
	ProcessingTime float64   `json:"processing_time"`
	Status         string    `json:"status"`
	ErrorMessage   *string   `json:"error_message"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS video_analyses (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	filename        TEXT NOT NULL,
	motion_detected BOOLEAN NOT NULL,
	frames_analyzed INTEGER NOT NULL,
	processing_time REAL NOT NULL,
	status          TEXT NOT NULL DEFAULT 'pending',
	error_message   TEXT,
	created_at      DATETIME NOT NULL,
	updated_at      DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_video_analyses_filename ON video_analyses (filename);
CREATE INDEX IF NOT EXISTS idx_video_analyses_status ON video_analyses (status);
CREATE INDEX IF NOT EXISTS idx_video_analyses_motion ON video_analyses (motion_detected);
`

// Store is the analysis repository.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and
// bootstraps the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrapf(err, "open database %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection, for health checks.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Create inserts a new analysis record and returns it with its
// assigned ID and timestamps.
func (s *Store) Create(filename string, motionDetected bool, framesAnalyzed int, processingTime float64, status string, errorMessage *string) (*Analysis, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO video_analyses
		 (filename, motion_detected, frames_analyzed, processing_time, status, error_message, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		filename, motionDetected, framesAnalyzed, processingTime, status, errorMessage, now, now)
	if err != nil {
		return nil, errors.Wrap(err, "insert analysis")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "analysis id")
	}
	return s.GetByID(id)
}

// GetByID returns the record with the given ID, or nil when absent.
func (s *Store) GetByID(id int64) (*Analysis, error) {
	row := s.db.QueryRow(
		`SELECT id, filename, motion_detected, frames_analyzed, processing_time, status, error_message, created_at, updated_at
		 FROM video_analyses WHERE id = ?`, id)
	return scanAnalysis(row)
}

// List returns records ordered newest first, with pagination and an
// optional status filter (empty string matches all).
func (s *Store) List(skip, limit int, status string) ([]Analysis, error) {
	query := `SELECT id, filename, motion_detected, frames_analyzed, processing_time, status, error_message, created_at, updated_at
		 FROM video_analyses`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, skip)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list analyses")
	}
	defer rows.Close()

	analyses := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysisRow(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *a)
	}
	return analyses, rows.Err()
}

// GetByFilename returns every analysis recorded for one file, newest
// first.
func (s *Store) GetByFilename(filename string) ([]Analysis, error) {
	rows, err := s.db.Query(
		`SELECT id, filename, motion_detected, frames_analyzed, processing_time, status, error_message, created_at, updated_at
		 FROM video_analyses WHERE filename = ? ORDER BY created_at DESC, id DESC`, filename)
	if err != nil {
		return nil, errors.Wrap(err, "analyses by filename")
	}
	defer rows.Close()

	analyses := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysisRow(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *a)
	}
	return analyses, rows.Err()
}

// UpdateStatus sets a record's status and optional error message.
// Returns the updated record, or nil when the ID does not exist.
func (s *Store) UpdateStatus(id int64, status string, errorMessage *string) (*Analysis, error) {
	res, err := s.db.Exec(
		`UPDATE video_analyses SET status = ?, error_message = COALESCE(?, error_message), updated_at = ? WHERE id = ?`,
		status, errorMessage, time.Now().UTC(), id)
	if err != nil {
		return nil, errors.Wrap(err, "update status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}

// Delete removes a record, reporting whether it existed.
func (s *Store) Delete(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM video_analyses WHERE id = ?`, id)
	if err != nil {
		return false, errors.Wrap(err, "delete analysis")
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountTotal returns the number of stored records.
func (s *Store) CountTotal() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM video_analyses`).Scan(&n)
	return n, errors.Wrap(err, "count analyses")
}

// CountByStatus returns the number of records with the given status.
func (s *Store) CountByStatus(status string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM video_analyses WHERE status = ?`, status).Scan(&n)
	return n, errors.Wrap(err, "count analyses by status")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysisRow(r rowScanner) (*Analysis, error) {
	var a Analysis
	var errMsg sql.NullString
	err := r.Scan(&a.ID, &a.Filename, &a.MotionDetected, &a.FramesAnalyzed,
		&a.ProcessingTime, &a.Status, &errMsg, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "scan analysis")
	}
	if errMsg.Valid {
		a.ErrorMessage = &errMsg.String
	}
	return &a, nil
}

func scanAnalysis(row *sql.Row) (*Analysis, error) {
	a, err := scanAnalysisRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}
