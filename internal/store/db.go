package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite credential store. It holds auth cookies and a few
// UI preferences; chat content is never written here.
type DB struct {
	*sql.DB
	path string
}

// pragmas are passed as go-sqlite3 DSN options on every connection.
var pragmas = url.Values{
	"_journal_mode": {"WAL"},
	"_busy_timeout": {"5000"},
	"_foreign_keys": {"on"},
	"_txlock":       {"immediate"},
}

// Open opens (creating if needed) the store at path. The file holds auth
// cookies, so it is restricted to the owner.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?"+pragmas.Encode())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if path != ":memory:" {
		if err := os.Chmod(path, 0600); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("restrict db file: %w", err)
		}
	}
	return &DB{DB: db, path: path}, nil
}

// Path returns the file the store was opened from.
func (db *DB) Path() string {
	return db.path
}
