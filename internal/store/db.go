// Package store persists the catalog, site configurations, and run logs in
// SQLite through database/sql.
package store

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Schema for all pipeline tables. Call InitSchema or apply manually.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	product_name TEXT NOT NULL,
	manufacturer TEXT NOT NULL,
	image_url TEXT,
	release_date TEXT,
	price INTEGER,
	description TEXT,
	lineup_info TEXT,
	source_url TEXT,
	is_new INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_manufacturer ON products(manufacturer);
CREATE INDEX IF NOT EXISTS idx_products_release_date ON products(release_date);
CREATE INDEX IF NOT EXISTS idx_products_is_new ON products(is_new);

CREATE TABLE IF NOT EXISTS site_configs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	site_name TEXT NOT NULL UNIQUE,
	site_url TEXT NOT NULL,
	schedule TEXT NOT NULL,
	enabled INTEGER NOT NULL DEFAULT 1,
	last_run_at TEXT
);

CREATE TABLE IF NOT EXISTS scrape_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	target_site TEXT NOT NULL,
	status TEXT NOT NULL,
	items_found INTEGER,
	error_message TEXT,
	executed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scrape_logs_site ON scrape_logs(target_site);
CREATE INDEX IF NOT EXISTS idx_scrape_logs_executed ON scrape_logs(executed_at);
`

const (
	dateFormat = "2006-01-02"
	timeFormat = time.RFC3339
)

// Open opens the SQLite database at the given path
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Concurrent site runs share this handle; SQLite serializes writers,
	// a single connection avoids busy errors.
	db.SetMaxOpenConns(1)
	return db, nil
}

// InitSchema creates all tables if they don't exist
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}

// nullableTime formats a *time.Time for storage
func nullableTime(t *time.Time, layout string) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(layout), Valid: true}
}

// parseNullableTime parses a stored nullable timestamp
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableString maps "" to NULL
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullableInt maps nil to NULL
func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
