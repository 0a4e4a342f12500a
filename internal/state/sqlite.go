package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite state store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// NewWithDB wraps an existing connection. Migrations are not run.
func NewWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Open opens a connection to the SQLite database and migrates it.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := ":memory:?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// Every pooled connection to ":memory:" would see its own database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	if err := s.Migrate(); err != nil {
		_ = db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

// SourceKey normalizes a file path into the key rules are stored under.
func SourceKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// --- Rule operations ---

// SaveRules replaces the remembered rules for source.
func (s *SQLiteStore) SaveRules(source string, rules []ColumnRule) (err error) {
	if s.db == nil {
		return ErrNotOpened
	}
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	sourceID, err := upsertSource(ctx, tx, source)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM column_rules WHERE source_id = ?`, sourceID); err != nil {
		return fmt.Errorf("failed to clear rules: %w", err)
	}

	for i, r := range rules {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO column_rules (source_id, column_name, position, rule, ignored) VALUES (?, ?, ?, ?, ?)`,
			sourceID, r.Column, i, r.Rule, r.Ignored,
		)
		if err != nil {
			return fmt.Errorf("failed to save rule for %q: %w", r.Column, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rules: %w", err)
	}
	return nil
}

func upsertSource(ctx context.Context, tx *sql.Tx, source string) (string, error) {
	ts := now()
	var id string
	err := tx.QueryRowContext(ctx,
		`INSERT INTO sources (id, path, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET updated_at = excluded.updated_at
		 RETURNING id`,
		generateID(), source, ts, ts,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to save source: %w", err)
	}
	return id, nil
}

// LoadRules returns the remembered rules for source in column order.
// It returns nil when nothing is remembered.
func (s *SQLiteStore) LoadRules(source string) ([]ColumnRule, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	rows, err := s.db.Query(
		`SELECT r.column_name, r.rule, r.ignored
		 FROM column_rules r JOIN sources s ON s.id = r.source_id
		 WHERE s.path = ?
		 ORDER BY r.position`,
		source,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []ColumnRule
	for rows.Next() {
		var r ColumnRule
		if err := rows.Scan(&r.Column, &r.Rule, &r.Ignored); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// DeleteRules forgets source, its rules and its runs.
func (s *SQLiteStore) DeleteRules(source string) error {
	if s.db == nil {
		return ErrNotOpened
	}
	if _, err := s.db.Exec(`DELETE FROM sources WHERE path = ?`, source); err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	return nil
}

// Sources lists remembered sources, most recently updated first.
func (s *SQLiteStore) Sources() ([]Source, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	rows, err := s.db.Query(`SELECT id, path, created_at, updated_at FROM sources ORDER BY updated_at DESC, path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Source
	for rows.Next() {
		var src Source
		var created, updated string
		if err := rows.Scan(&src.ID, &src.Path, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		src.CreatedAt = parseTime(created)
		src.UpdatedAt = parseTime(updated)
		out = append(out, src)
	}
	return out, rows.Err()
}

// --- Run operations ---

// RecordRun stores the outcome of applying rules to source.
func (s *SQLiteStore) RecordRun(source string, columns int, failed []string) (run *Run, err error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	sourceID, err := upsertSource(ctx, tx, source)
	if err != nil {
		return nil, err
	}

	run = &Run{
		ID:        generateID(),
		Source:    source,
		StartedAt: time.Now().UTC(),
		Columns:   columns,
		Failed:    len(failed),
		Errors:    strings.Join(failed, ","),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO transfer_runs (id, source_id, started_at, columns, failed, errors) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, sourceID, run.StartedAt.Format(timeLayout), run.Columns, run.Failed, run.Errors,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return run, nil
}

// Runs returns the most recent runs for source, newest first.
// A limit of zero or less returns every run.
func (s *SQLiteStore) Runs(source string, limit int) ([]Run, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(
		`SELECT r.id, s.path, r.started_at, r.columns, r.failed, r.errors
		 FROM transfer_runs r JOIN sources s ON s.id = r.source_id
		 WHERE s.path = ?
		 ORDER BY r.started_at DESC
		 LIMIT ?`,
		source, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &r.Source, &started, &r.Columns, &r.Failed, &r.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = parseTime(started)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ErrNotOpened is returned by operations on a store that was never opened.
var ErrNotOpened = errors.New("database not opened")
