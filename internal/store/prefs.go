package store

import (
	"database/sql"
	"errors"
	"time"
)

// SetPref stores a preference value.
func (db *DB) SetPref(key, value string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO prefs (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	return err
}

// GetPref returns a preference value, or "" when unset.
func (db *DB) GetPref(key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// DeletePref removes a preference.
func (db *DB) DeletePref(key string) error {
	_, err := db.Exec(`DELETE FROM prefs WHERE key = ?`, key)
	return err
}
