// Package store archives clearing runs in SQLite so a published ledger can be
// looked up and re-verified later.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/cloudx-io/draftauction/core"
	"github.com/cloudx-io/draftauction/store/migrations"
)

var (
	// ErrRunNotFound is returned when no run has the requested ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunExists is returned when saving a run whose ID is already archived.
	ErrRunExists = errors.New("run already exists")
)

// Run is one archived clearing run.
type Run struct {
	ID         uuid.UUID
	AuctionID  string
	Params     core.Params
	Teams      []string
	Ledger     core.Ledger
	LedgerHash string
	CreatedAt  time.Time
}

// Result rebuilds the results table from the archived ledger.
func (r *Run) Result() *core.AuctionResult {
	return core.Summarize(r.Teams, r.Ledger)
}

// RunSummary is the listing view of a run, without its ledger.
type RunSummary struct {
	ID         uuid.UUID
	AuctionID  string
	Params     core.Params
	LedgerHash string
	CreatedAt  time.Time
	TeamCount  int
	EntryCount int
}

// Store persists runs in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite run archive and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveRun archives run with its teams and ledger in one transaction. A zero ID
// is replaced with a fresh UUID, a zero CreatedAt with the current time and an
// empty LedgerHash with the hash of the ledger.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if run == nil {
		return fmt.Errorf("run is required")
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.LedgerHash == "" {
		run.LedgerHash = core.ComputeLedgerHash(run.Ledger)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, auction_id, budget, max_wins_per_team, ledger_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID.String(),
		run.AuctionID,
		run.Params.Budget,
		run.Params.MaxWinsPerTeam,
		run.LedgerHash,
		toMillis(run.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrRunExists, run.ID)
		}
		return fmt.Errorf("insert run: %w", err)
	}

	for i, team := range run.Teams {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_teams (run_id, position, team) VALUES (?, ?, ?)`,
			run.ID.String(), i, team,
		); err != nil {
			return fmt.Errorf("insert team %s: %w", team, err)
		}
	}

	for i, entry := range run.Ledger {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_entries (run_id, position, item, team, amount, draw, won)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID.String(), i, entry.Item, entry.Team, entry.Amount, entry.Draw, entry.Won,
		); err != nil {
			return fmt.Errorf("insert ledger entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save run: %w", err)
	}
	return nil
}

// LoadRun returns one archived run with its teams and ledger in saved order.
func (s *Store) LoadRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	run := &Run{ID: id}
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT auction_id, budget, max_wins_per_team, ledger_hash, created_at
		   FROM runs
		  WHERE id = ?`,
		id.String(),
	).Scan(&run.AuctionID, &run.Params.Budget, &run.Params.MaxWinsPerTeam, &run.LedgerHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	run.CreatedAt = fromMillis(createdAt)

	if run.Teams, err = s.loadTeams(ctx, id); err != nil {
		return nil, err
	}
	if run.Ledger, err = s.loadLedger(ctx, id); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) loadTeams(ctx context.Context, id uuid.UUID) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT team FROM run_teams WHERE run_id = ? ORDER BY position`,
		id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list run teams: %w", err)
	}
	defer rows.Close()

	teams := make([]string, 0)
	for rows.Next() {
		var team string
		if err := rows.Scan(&team); err != nil {
			return nil, fmt.Errorf("scan run team: %w", err)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list run teams: %w", err)
	}
	return teams, nil
}

func (s *Store) loadLedger(ctx context.Context, id uuid.UUID) (core.Ledger, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT item, team, amount, draw, won
		   FROM ledger_entries
		  WHERE run_id = ?
		  ORDER BY position`,
		id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	ledger := make(core.Ledger, 0)
	for rows.Next() {
		var entry core.BidEntry
		if err := rows.Scan(&entry.Item, &entry.Team, &entry.Amount, &entry.Draw, &entry.Won); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		ledger = append(ledger, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return ledger, nil
}

// ListRuns returns up to limit runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT r.id, r.auction_id, r.budget, r.max_wins_per_team, r.ledger_hash, r.created_at,
		        (SELECT COUNT(*) FROM run_teams t WHERE t.run_id = r.id),
		        (SELECT COUNT(*) FROM ledger_entries e WHERE e.run_id = r.id)
		   FROM runs r
		  ORDER BY r.created_at DESC, r.id
		  LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	summaries := make([]RunSummary, 0, limit)
	for rows.Next() {
		var (
			summary   RunSummary
			id        string
			createdAt int64
		)
		if err := rows.Scan(
			&id,
			&summary.AuctionID,
			&summary.Params.Budget,
			&summary.Params.MaxWinsPerTeam,
			&summary.LedgerHash,
			&createdAt,
			&summary.TeamCount,
			&summary.EntryCount,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if summary.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		summary.CreatedAt = fromMillis(createdAt)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return summaries, nil
}

const migrationTable = "schema_migrations"

// applyMigrations executes each embedded .sql file at most once, in name order.
func applyMigrations(sqlDB *sql.DB, migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		var count int
		if err := sqlDB.QueryRow(
			`SELECT COUNT(*) FROM `+migrationTable+` WHERE name = ?`, file,
		).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if count > 0 {
			continue
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`,
			file, toMillis(time.Now()),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
