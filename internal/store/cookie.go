package store

import (
	"fmt"
	"time"
)

// UpsertCookie inserts or replaces a cookie (idempotent on url + name).
func (db *DB) UpsertCookie(c *Cookie) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO cookies (url, name, value, path, domain, expires, secure, http_only, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url, name) DO UPDATE SET
			value = excluded.value,
			path = excluded.path,
			domain = excluded.domain,
			expires = excluded.expires,
			secure = excluded.secure,
			http_only = excluded.http_only,
			updated_at = excluded.updated_at`,
		c.URL, c.Name, c.Value, c.Path, c.Domain, c.Expires, c.Secure, c.HTTPOnly, now)
	return err
}

// DeleteCookie removes a single cookie.
func (db *DB) DeleteCookie(url, name string) error {
	_, err := db.Exec(`DELETE FROM cookies WHERE url = ? AND name = ?`, url, name)
	return err
}

// ClearCookies removes every cookie stored for url.
func (db *DB) ClearCookies(url string) error {
	_, err := db.Exec(`DELETE FROM cookies WHERE url = ?`, url)
	return err
}

// ListCookies returns the unexpired cookies for url. Expired rows are purged.
func (db *DB) ListCookies(url string) ([]Cookie, error) {
	now := time.Now().UnixMilli()
	if _, err := db.Exec(`DELETE FROM cookies WHERE expires > 0 AND expires <= ?`, now); err != nil {
		return nil, fmt.Errorf("purge expired cookies: %w", err)
	}

	rows, err := db.Query(`
		SELECT url, name, value, path, domain, expires, secure, http_only
		FROM cookies WHERE url = ? ORDER BY name`, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cookies []Cookie
	for rows.Next() {
		var c Cookie
		if err := rows.Scan(&c.URL, &c.Name, &c.Value, &c.Path, &c.Domain, &c.Expires, &c.Secure, &c.HTTPOnly); err != nil {
			return nil, err
		}
		cookies = append(cookies, c)
	}
	return cookies, rows.Err()
}
