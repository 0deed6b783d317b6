// Package journal keeps a SQLite history of batch runs and the outcome of
// every file in them.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema/*.sql
var migrationsFS embed.FS

// File statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ErrRunNotFound is returned by GetRun for an unknown ID.
var ErrRunNotFound = errors.New("run not found")

// Journal wraps the run history database.
type Journal struct {
	db *sql.DB
}

// Run is one batch invocation.
type Run struct {
	ID          int64
	InputFolder string
	OutputDir   string
	Target      int
	StartedAt   time.Time
	FinishedAt  time.Time
	Processed   int
	Failed      int
}

// FileRecord is the outcome of one source file within a run.
type FileRecord struct {
	Source       string
	Output       string
	Status       string
	Stage        string
	ErrorMessage string
	CreatedAt    time.Time
}

// Open opens (or creates) the journal at path and applies migrations.
// ":memory:" gives a throwaway journal.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single connection so an in-memory database is shared by all queries
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := ApplyMigrations(db, migrationsFS, "schema"); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Ping checks the database connection.
func (j *Journal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

// StartRun inserts a new run and returns its ID.
func (j *Journal) StartRun(ctx context.Context, inputFolder, outputDir string, target int) (int64, error) {
	res, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (input_folder, output_dir, target, started_at) VALUES (?, ?, ?, ?)`,
		inputFolder, outputDir, target, formatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// RecordFile stores the outcome of one file of run runID.
func (j *Journal) RecordFile(ctx context.Context, runID int64, rec FileRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO run_files (run_id, source, output, status, stage, error_message, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.Source, rec.Output, rec.Status, rec.Stage, rec.ErrorMessage, formatTime(created))
	if err != nil {
		return fmt.Errorf("insert run file: %w", err)
	}
	return nil
}

// FinishRun stamps the run with its end time and counters.
func (j *Journal) FinishRun(ctx context.Context, runID int64, processed, failed int) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, processed = ?, failed = ? WHERE id = ?`,
		formatTime(time.Now()), processed, failed, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (j *Journal) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, input_folder, output_dir, target, started_at, COALESCE(finished_at, ''), processed, failed
         FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.InputFolder, &r.OutputDir, &r.Target, &started, &finished, &r.Processed, &r.Failed); err != nil {
			return nil, err
		}
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns a single run.
func (j *Journal) GetRun(ctx context.Context, id int64) (Run, error) {
	var r Run
	var started, finished string
	err := j.db.QueryRowContext(ctx,
		`SELECT id, input_folder, output_dir, target, started_at, COALESCE(finished_at, ''), processed, failed
         FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.InputFolder, &r.OutputDir, &r.Target, &started, &finished, &r.Processed, &r.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("query run: %w", err)
	}
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	return r, nil
}

// RunFiles returns the file outcomes of a run in insertion order.
func (j *Journal) RunFiles(ctx context.Context, runID int64) ([]FileRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT source, output, status, stage, error_message, created_at
         FROM run_files WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run files: %w", err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		var created string
		if err := rows.Scan(&f.Source, &f.Output, &f.Status, &f.Stage, &f.ErrorMessage, &created); err != nil {
			return nil, err
		}
		f.CreatedAt = parseTime(created)
		files = append(files, f)
	}
	return files, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
