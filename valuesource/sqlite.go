package valuesource

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/dzonerzy/snapargv/snap"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads option values from a settings table:
//
//	CREATE TABLE settings (key TEXT NOT NULL, value TEXT NOT NULL)
//
// Keys are dotted command paths ("deploy.region"). Each row is one
// invocation, in insertion order, so repeated keys feed slice options.
type SQLiteSource struct {
	db    *sql.DB
	table string
}

// SQLite opens (or creates) the database at dsn, which may be ":memory:",
// and ensures the settings table exists.
func SQLite(dsn, table string) (*SQLiteSource, error) {
	if table == "" {
		table = "settings"
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("sqlite: invalid table name %q", table)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases alive and shared.
	db.SetMaxOpenConns(1)

	schema := `CREATE TABLE IF NOT EXISTS ` + table + ` (
		key   TEXT NOT NULL,
		value TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS ` + table + `_key ON ` + table + ` (key);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteSource{db: db, table: table}, nil
}

// Set replaces the rows of key with one row per value.
func (s *SQLiteSource) Set(ctx context.Context, key string, values ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE key = ?`, key); err != nil {
		return err
	}
	for _, v := range values {
		if _, err := tx.ExecContext(ctx, `INSERT INTO `+s.table+` (key, value) VALUES (?, ?)`, key, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// GetValues implements snap.ValueSource.
func (s *SQLiteSource) GetValues(ctx *snap.Context, flag *snap.Flag) ([]snap.Invocation, error) {
	key := strings.Join(snap.KeyPath(ctx, flag), ".")
	rows, err := s.db.QueryContext(ctx.Context(), `SELECT value FROM `+s.table+` WHERE key = ? ORDER BY rowid`, key)
	if err != nil {
		return nil, fmt.Errorf("sqlite: read %s: %w", key, err)
	}
	defer rows.Close()

	var out []snap.Invocation
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, snap.ValueInvocation(flag, v))
	}
	return out, rows.Err()
}
