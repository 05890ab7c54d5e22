// Package runlog records scrape executions in an embedded SQLite database:
// one row per run, listable from the CLI and HTTP API.
package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/jonesrussell/subsift/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS scrape_runs (
	id            TEXT PRIMARY KEY,
	subreddit     TEXT NOT NULL,
	pages         INTEGER NOT NULL DEFAULT 0,
	posts_fetched INTEGER NOT NULL DEFAULT 0,
	posts_added   INTEGER NOT NULL DEFAULT 0,
	dataset_total INTEGER NOT NULL DEFAULT 0,
	status        TEXT NOT NULL,
	error         TEXT NOT NULL DEFAULT '',
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_scrape_runs_started_at ON scrape_runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_scrape_runs_subreddit ON scrape_runs(subreddit);
`

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("scrape run not found")

// Repository persists scrape runs.
type Repository struct {
	db *sqlx.DB
}

// Open opens (creating if necessary) the run ledger at path and bootstraps
// the schema.
func Open(path string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run log directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}

	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize run log schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Start inserts a new running entry and returns it.
func (r *Repository) Start(ctx context.Context, subreddit string, pages int) (*domain.ScrapeRun, error) {
	run := &domain.ScrapeRun{
		ID:        uuid.New().String(),
		Subreddit: subreddit,
		Pages:     pages,
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO scrape_runs (id, subreddit, pages, status, started_at)
		VALUES (:id, :subreddit, :pages, :status, :started_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return nil, fmt.Errorf("failed to record run start: %w", err)
	}
	return run, nil
}

// Complete marks a run finished and stores the scrape counters.
func (r *Repository) Complete(ctx context.Context, run *domain.ScrapeRun) error {
	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Status = domain.RunStatusCompleted

	query := `
		UPDATE scrape_runs
		SET posts_fetched = :posts_fetched,
		    posts_added   = :posts_added,
		    dataset_total = :dataset_total,
		    status        = :status,
		    finished_at   = :finished_at
		WHERE id = :id
	`
	result, err := r.db.NamedExecContext(ctx, query, run)
	if err != nil {
		return fmt.Errorf("failed to record run completion: %w", err)
	}
	return checkAffected(result)
}

// Fail marks a run failed with the given error text.
func (r *Repository) Fail(ctx context.Context, run *domain.ScrapeRun, runErr error) error {
	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Status = domain.RunStatusFailed
	if runErr != nil {
		run.Error = runErr.Error()
	}

	query := `
		UPDATE scrape_runs
		SET status = :status, error = :error, finished_at = :finished_at
		WHERE id = :id
	`
	result, err := r.db.NamedExecContext(ctx, query, run)
	if err != nil {
		return fmt.Errorf("failed to record run failure: %w", err)
	}
	return checkAffected(result)
}

// List returns the most recent runs, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]domain.ScrapeRun, error) {
	if limit <= 0 {
		limit = 50
	}

	var runs []domain.ScrapeRun
	query := `
		SELECT id, subreddit, pages, posts_fetched, posts_added, dataset_total,
		       status, error, started_at, finished_at
		FROM scrape_runs
		ORDER BY started_at DESC
		LIMIT ?
	`
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetByID returns a single run.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.ScrapeRun, error) {
	var run domain.ScrapeRun
	query := `
		SELECT id, subreddit, pages, posts_fetched, posts_added, dataset_total,
		       status, error, started_at, finished_at
		FROM scrape_runs
		WHERE id = ?
	`
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// checkAffected translates a zero-row update into ErrRunNotFound.
func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return ErrRunNotFound
	}
	return nil
}
