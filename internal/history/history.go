// Package history persists batch runs to a local SQLite ledger so past
// conversions can be reviewed with the history subcommand. Each run gets one
// row plus one row per attempted file; the pipeline feeds rows through the
// [RunRecorder] as outcomes finalize, so an interrupted run still shows the
// files it reached.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/backmassage/retrograde/internal/config"
	"github.com/backmassage/retrograde/internal/pipeline"
)

// Store wraps the SQLite ledger database.
type Store struct {
	db *sql.DB
}

// Open opens the ledger at path, creating the directory, file, and schema
// on first use.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		input_dir TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		bitrate_kbps INTEGER NOT NULL,
		crop INTEGER NOT NULL DEFAULT 0,
		subtitle_mode TEXT NOT NULL DEFAULT 'none',
		total INTEGER NOT NULL DEFAULT 0,
		completed INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		input_bytes INTEGER NOT NULL DEFAULT 0,
		output_bytes INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS run_files (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		path TEXT NOT NULL,
		status TEXT NOT NULL,
		stage TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		output_bytes INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_run_files_run ON run_files(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one recorded batch.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time // Zero when the run never finished.
	InputDir     string
	OutputDir    string
	BitrateKbps  int
	Crop         bool
	SubtitleMode string
	Total        int
	Completed    int
	Skipped      int
	Failed       int
	InputBytes   int64
	OutputBytes  int64
}

// Finished reports whether the run recorded a final summary. A run without
// one was interrupted hard enough that FinishRun never executed.
func (r *Run) Finished() bool { return !r.FinishedAt.IsZero() }

// FileRecord is the stored outcome of one file within a run.
type FileRecord struct {
	Position    int
	Path        string
	Status      string
	Stage       string
	Reason      string
	OutputBytes int64
}

// StartRun inserts a run row for the batch described by cfg and returns a
// recorder that appends per-file outcomes to it. IDs are UUIDv7 so rows sort
// chronologically even when started_at collides.
func (s *Store) StartRun(cfg *config.Config, total int) (*RunRecorder, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(`
		INSERT INTO runs (id, started_at, input_dir, output_dir, bitrate_kbps, crop, subtitle_mode, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), time.Now(), cfg.InputDir, cfg.OutputDir,
		cfg.VideoBitrate, boolInt(cfg.CropToStandard), string(cfg.SubtitleMode), total,
	)
	if err != nil {
		return nil, err
	}
	return &RunRecorder{store: s, runID: id.String()}, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, input_dir, output_dir, bitrate_kbps,
		       crop, subtitle_mode, total, completed, skipped, failed,
		       input_bytes, output_bytes
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		var crop int
		if err := rows.Scan(&r.ID, &r.StartedAt, &finished, &r.InputDir, &r.OutputDir,
			&r.BitrateKbps, &crop, &r.SubtitleMode, &r.Total, &r.Completed,
			&r.Skipped, &r.Failed, &r.InputBytes, &r.OutputBytes); err != nil {
			return nil, err
		}
		if finished.Valid {
			r.FinishedAt = finished.Time
		}
		r.Crop = crop != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ResolveRunID expands a run ID prefix to the full stored ID. An exact match
// wins; otherwise the prefix must match exactly one run.
func (s *Store) ResolveRunID(prefix string) (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM runs WHERE id = ?`, prefix).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	rows, err := s.db.Query(`SELECT id FROM runs WHERE id LIKE ? || '%' LIMIT 2`, prefix)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return "", err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no run matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("run prefix %q is ambiguous", prefix)
	}
}

// RunFiles returns the per-file outcomes of a run in processing order.
func (s *Store) RunFiles(runID string) ([]FileRecord, error) {
	rows, err := s.db.Query(`
		SELECT position, path, status, stage, reason, output_bytes
		FROM run_files WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.Position, &f.Path, &f.Status, &f.Stage,
			&f.Reason, &f.OutputBytes); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// RunRecorder appends outcomes for a single run. It satisfies the pipeline's
// Recorder interface.
type RunRecorder struct {
	store    *Store
	runID    string
	position int
}

// ID returns the ledger ID of the run being recorded.
func (r *RunRecorder) ID() string { return r.runID }

// RecordOutcome inserts one file outcome row.
func (r *RunRecorder) RecordOutcome(o pipeline.Outcome) error {
	r.position++
	_, err := r.store.db.Exec(`
		INSERT INTO run_files (run_id, position, path, status, stage, reason, output_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.runID, r.position, o.Path, o.Status.String(), o.Stage, o.Reason, o.OutputBytes)
	return err
}

// FinishRun stamps the run row with its final counters.
func (r *RunRecorder) FinishRun(stats pipeline.RunStats) error {
	_, err := r.store.db.Exec(`
		UPDATE runs SET finished_at = ?, completed = ?, skipped = ?, failed = ?,
		       input_bytes = ?, output_bytes = ?
		WHERE id = ?`,
		time.Now(), stats.Completed, stats.Skipped, stats.Failed,
		stats.TotalInputBytes, stats.TotalOutputBytes, r.runID)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
