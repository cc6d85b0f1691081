package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the dashboard can read while the updater writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS update_runs (
			id            TEXT PRIMARY KEY,
			kind          TEXT NOT NULL,
			started_at    INTEGER NOT NULL,
			finished_at   INTEGER NOT NULL,
			status        TEXT NOT NULL,
			fetched       INTEGER,
			appended      INTEGER,
			failed_series TEXT,
			committed     INTEGER,
			revision      TEXT,
			error         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_update_runs_started ON update_runs(started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	committed := 0
	if run.Committed {
		committed = 1
	}
	_, err := r.db.Exec(`INSERT INTO update_runs
		(id, kind, started_at, finished_at, status, fetched, appended, failed_series, committed, revision, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.Kind, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(), run.Status,
		run.Fetched, run.Appended, strings.Join(run.FailedSeries, ","), committed, run.Revision, run.Error,
	)
	return err
}

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT id, kind, started_at, finished_at, status, fetched, appended,
		failed_series, committed, revision, error
		FROM update_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			started, ended    int64
			failed, errText   sql.NullString
			revision          sql.NullString
			committed         int
			fetched, appended sql.NullInt64
		)
		if err := rows.Scan(&run.ID, &run.Kind, &started, &ended, &run.Status, &fetched, &appended,
			&failed, &committed, &revision, &errText); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = time.UnixMilli(started).UTC()
		run.FinishedAt = time.UnixMilli(ended).UTC()
		run.Fetched = int(fetched.Int64)
		run.Appended = int(appended.Int64)
		if failed.String != "" {
			run.FailedSeries = strings.Split(failed.String, ",")
		}
		run.Committed = committed == 1
		run.Revision = revision.String
		run.Error = errText.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
