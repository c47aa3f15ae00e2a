// Package store persists comparison runs to a local sqlite database so
// repeated comparisons of the same surfaces can be reviewed later.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one recorded comparison of a grid pair.
type Run struct {
	RunID        string  `json:"run_id"`
	GridAPath    string  `json:"grid_a_path"`
	GridBPath    string  `json:"grid_b_path"`
	Overlap      float64 `json:"overlap"`
	Tolerance    float64 `json:"tolerance"`
	LowerCount   int     `json:"lower_count"`
	EqualCount   int     `json:"equal_count"`
	HigherCount  int     `json:"higher_count"`
	MissingCount int     `json:"missing_count"`
	DurationMs   int64   `json:"duration_ms"`
	CreatedAt    int64   `json:"created_at"`
}

// RunStore provides persistence for comparison runs.
type RunStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at path and applies
// any pending migrations.
func Open(path string) (*RunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate run store: %w", err)
	}
	return &RunStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// Insert persists a run. If RunID is empty a UUID is generated; if
// CreatedAt is zero the current time is used.
func (s *RunStore) Insert(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	_, err := s.db.Exec(`
		INSERT INTO comparison_runs (
			run_id, grid_a_path, grid_b_path, overlap, tolerance,
			lower_count, equal_count, higher_count, missing_count,
			duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.GridAPath, run.GridBPath, run.Overlap, run.Tolerance,
		run.LowerCount, run.EqualCount, run.HigherCount, run.MissingCount,
		run.DurationMs, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Get returns the run with the given id, or sql.ErrNoRows if absent.
func (s *RunStore) Get(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, grid_a_path, grid_b_path, overlap, tolerance,
		       lower_count, equal_count, higher_count, missing_count,
		       duration_ms, created_at
		FROM comparison_runs
		WHERE run_id = ?`, runID)

	run := &Run{}
	err := row.Scan(
		&run.RunID, &run.GridAPath, &run.GridBPath, &run.Overlap, &run.Tolerance,
		&run.LowerCount, &run.EqualCount, &run.HigherCount, &run.MissingCount,
		&run.DurationMs, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns the most recent runs, newest first, up to limit.
func (s *RunStore) List(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT run_id, grid_a_path, grid_b_path, overlap, tolerance,
		       lower_count, equal_count, higher_count, missing_count,
		       duration_ms, created_at
		FROM comparison_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(
			&run.RunID, &run.GridAPath, &run.GridBPath, &run.Overlap, &run.Tolerance,
			&run.LowerCount, &run.EqualCount, &run.HigherCount, &run.MissingCount,
			&run.DurationMs, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
