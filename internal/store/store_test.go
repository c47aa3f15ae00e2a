package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *RunStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndGet(t *testing.T) {
	s := openTestStore(t)

	run := &Run{
		GridAPath:    "current.asc",
		GridBPath:    "future.asc",
		Overlap:      0.8734,
		Tolerance:    0.05,
		LowerCount:   10,
		EqualCount:   80,
		HigherCount:  7,
		MissingCount: 3,
		DurationMs:   12,
	}
	if err := s.Insert(run); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if run.RunID == "" {
		t.Fatal("Insert() did not assign a run id")
	}
	if run.CreatedAt == 0 {
		t.Fatal("Insert() did not assign a timestamp")
	}

	got, err := s.Get(run.RunID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Overlap != run.Overlap || got.GridAPath != run.GridAPath || got.EqualCount != 80 {
		t.Errorf("Get() = %+v, want %+v", got, run)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get("no-such-run")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Get() error = %v, want sql.ErrNoRows", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 3; i++ {
		run := &Run{
			GridAPath: "a.asc",
			GridBPath: "b.asc",
			CreatedAt: int64(100 + i),
		}
		if err := s.Insert(run); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	runs, err := s.List(10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("List() returned %d runs, want 3", len(runs))
	}
	if runs[0].CreatedAt != 102 || runs[2].CreatedAt != 100 {
		t.Errorf("List() order = %d, %d, %d; want newest first",
			runs[0].CreatedAt, runs[1].CreatedAt, runs[2].CreatedAt)
	}
}

func TestListLimit(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		if err := s.Insert(&Run{GridAPath: "a", GridBPath: "b", CreatedAt: int64(i + 1)}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	runs, err := s.List(2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("List(2) returned %d runs", len(runs))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() error = %v", err)
	}
	if err := s1.Insert(&Run{GridAPath: "a", GridBPath: "b"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	s1.Close()

	// Reopening must re-run migrations without error and keep the data.
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer s2.Close()
	runs, err := s2.List(10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("List() after reopen returned %d runs, want 1", len(runs))
	}
}
