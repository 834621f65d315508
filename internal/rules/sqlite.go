package rules

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hurttlocker/wastesort/internal/waste"

	_ "modernc.org/sqlite"
)

// DefaultDBPath is where the SQLite backend lives when no path is configured.
const DefaultDBPath = "~/.wastesort/rules.db"

// SQLiteBackend stores rules in a single SQLite table, ordered by position.
type SQLiteBackend struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLite opens (creating if needed) the database at path.
// Pass ":memory:" for an in-memory database (testing).
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if path == "" {
		path = expandPath(DefaultDBPath)
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	b := &SQLiteBackend{db: db, dbPath: path}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return b, nil
}

func (b *SQLiteBackend) migrate() error {
	_, err := b.db.Exec(`
CREATE TABLE IF NOT EXISTS rules (
  position INTEGER NOT NULL,
  item_name TEXT PRIMARY KEY,
  category TEXT NOT NULL,
  reason TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rules_position ON rules(position);
`)
	return err
}

// Name identifies the backend in logs and errors.
func (b *SQLiteBackend) Name() string { return "sqlite:" + b.dbPath }

// Load returns all rules in stored order. An empty table is a cold start.
func (b *SQLiteBackend) Load(ctx context.Context) ([]Rule, error) {
	rows, err := b.db.QueryContext(ctx, `
SELECT item_name, category, reason
FROM rules
ORDER BY position ASC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rule
	for rows.Next() {
		var r Rule
		var cat string
		if err := rows.Scan(&r.ItemName, &cat, &r.Reason); err != nil {
			return nil, err
		}
		r.Category = waste.Category(cat)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Save replaces the table contents in one transaction.
func (b *SQLiteBackend) Save(ctx context.Context, rules []Rule) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM rules;"); err != nil {
		return fmt.Errorf("clearing rules: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO rules(position, item_name, category, reason) VALUES(?, ?, ?, ?);")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rules {
		if _, err := stmt.ExecContext(ctx, i, r.ItemName, string(r.Category), r.Reason); err != nil {
			return fmt.Errorf("inserting rule %q: %w", r.ItemName, err)
		}
	}
	return tx.Commit()
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// expandPath expands a leading ~ to the home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
