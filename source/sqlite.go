package source

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLite serves lookups from a two-column (key, value) table, opened read-only. Each lookup is
// one query, so edits to the database are visible to the next lookup.
type SQLite struct {
	db    *sql.DB
	query string
}

// OpenSQLite opens the database at path and checks that table has key and value columns.
func OpenSQLite(path, table string) (*SQLite, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s := &SQLite{
		db:    db,
		query: `SELECT value FROM ` + quoteIdent(table) + ` WHERE key = ?`,
	}

	// Fail early on a missing table rather than on the first lookup
	if _, _, err := s.Lookup(""); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: table %q: %w", path, table, err)
	}

	return s, nil
}

// Lookup implements fastedge.LookupFunc. A NULL value counts as a miss.
func (s *SQLite) Lookup(key string) (string, bool, error) {
	var v sql.NullString
	err := s.db.QueryRow(s.query, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v.String, v.Valid, nil
}

// Close releases the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
