package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the ent SQL driver and provides access to repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection and writes are serialized by SQLite
	// anyway, so a single connection keeps both simple.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(context.Background(), drv)
	if err != nil {
		drv.Close()
		return nil, err
	}

	return &Store{db: db, drv: drv, seq: seq}, nil
}

func migrate(ctx context.Context, drv dialect.Driver) error {
	if err := compactReadiness(ctx, drv); err != nil {
		return err
	}
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}

// Driver returns the underlying ent SQL driver.
func (s *Store) Driver() *entsql.Driver {
	return s.drv
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CatalogRepo returns a CatalogRepo backed by this store.
func (s *Store) CatalogRepo() CatalogRepo {
	return &catalogRepo{drv: s.drv}
}

// LearnerRepo returns a LearnerRepo backed by this store.
func (s *Store) LearnerRepo() LearnerRepo {
	return &learnerRepo{drv: s.drv, seq: s.seq}
}

// applyPragmas configures SQLite for a single-process service.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. SKILLFORGE_DB environment variable
// 2. $XDG_DATA_HOME/skillforge/skillforge.db
// 3. ~/.local/share/skillforge/skillforge.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("SKILLFORGE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "skillforge", "skillforge.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// builder is satisfied by every ent SQL builder.
type builder interface {
	Query() (string, []any)
}

func sqlite() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func exec(ctx context.Context, q dialect.ExecQuerier, b builder) error {
	stmt, args := b.Query()
	return q.Exec(ctx, stmt, args, nil)
}

// query runs b and calls scan once per row.
func query(ctx context.Context, q dialect.ExecQuerier, b builder, scan func(*entsql.Rows) error) error {
	stmt, args := b.Query()
	var rows entsql.Rows
	if err := q.Query(ctx, stmt, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(&rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// withTx runs fn inside a transaction, rolling back on error.
func withTx(ctx context.Context, drv *entsql.Driver, fn func(tx dialect.Tx) error) error {
	tx, err := drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// compactReadiness keeps only the newest readiness row per learner so the
// unique user_id index can be created on databases that appended history.
func compactReadiness(ctx context.Context, drv dialect.Driver) error {
	var rows entsql.Rows
	if err := drv.Query(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
		[]any{ReadinessScoresTable.Name}, &rows); err != nil {
		return fmt.Errorf("inspect readiness table: %w", err)
	}
	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return err
		}
	}
	rows.Close()
	if n == 0 {
		return nil
	}
	err := drv.Exec(ctx, "DELETE FROM readiness_scores WHERE id NOT IN (SELECT MAX(id) FROM readiness_scores GROUP BY user_id)",
		[]any{}, nil)
	if err != nil {
		return fmt.Errorf("compact readiness: %w", err)
	}
	return nil
}
