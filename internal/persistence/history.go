package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrUnknownRun is returned for run ids that are not in the database.
var ErrUnknownRun = errors.New("unknown run")

// History records batch runs and their per-generation census in SQLite.
type History struct {
	db *sql.DB
}

// Run describes one recorded simulation.
type Run struct {
	ID           string
	Model        string
	Width        int
	Height       int
	Neighborhood string
	Seed         int64
	StartedAt    time.Time
	FinishedAt   time.Time
	Generations  int
}

// CensusRow is the population of one state at one generation.
type CensusRow struct {
	Generation int
	State      string
	Cells      int
}

// OpenHistory opens (creating if needed) the database at path. ":memory:" is
// accepted for throwaway stores.
func OpenHistory(path string) (*History, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &History{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			model TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			neighborhood TEXT NOT NULL,
			seed INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			generations INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS census (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			generation INTEGER NOT NULL,
			state TEXT NOT NULL,
			cells INTEGER NOT NULL,
			PRIMARY KEY (run_id, generation, state)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// BeginRun stores run and returns its freshly assigned id.
func (h *History) BeginRun(ctx context.Context, run Run) (string, error) {
	run.ID = uuid.NewString()
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO runs (id, model, width, height, neighborhood, seed, started_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Model, run.Width, run.Height, run.Neighborhood, run.Seed, run.StartedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return run.ID, nil
}

// RecordCensus stores the populations of one generation.
func (h *History) RecordCensus(ctx context.Context, runID string, generation int, counts map[string]int) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO census (run_id, generation, state, cells) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for state, cells := range counts {
		if _, err := stmt.ExecContext(ctx, runID, generation, state, cells); err != nil {
			return fmt.Errorf("record census: %w", err)
		}
	}
	return tx.Commit()
}

// FinishRun marks the run complete after generations steps.
func (h *History) FinishRun(ctx context.Context, runID string, generations int) error {
	res, err := h.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, generations = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), generations, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrUnknownRun)
	}
	return nil
}

// Runs lists the most recent runs first. limit <= 0 returns all of them.
func (h *History) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, model, width, height, neighborhood, seed, started_at, COALESCE(finished_at, ''), generations
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Model, &r.Width, &r.Height, &r.Neighborhood, &r.Seed, &started, &finished, &r.Generations); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Census returns every recorded row of a run ordered by generation and state.
func (h *History) Census(ctx context.Context, runID string) ([]CensusRow, error) {
	var exists int
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("census %s: %w", runID, ErrUnknownRun)
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT generation, state, cells FROM census WHERE run_id = ? ORDER BY generation, state`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CensusRow
	for rows.Next() {
		var c CensusRow
		if err := rows.Scan(&c.Generation, &c.State, &c.Cells); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Close releases the database.
func (h *History) Close() error { return h.db.Close() }
