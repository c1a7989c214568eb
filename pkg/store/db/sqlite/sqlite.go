// Package sqlite is the embedded scripture store (pure Go, modernc.org/sqlite).
package sqlite

import (
	"context"
	"strings"

	"scriptura/pkg/store/db/sqldb"

	_ "modernc.org/sqlite"
)

func placeholder(int) string {
	return "?"
}

// Dialect is the SQLite flavour of the schema.
var Dialect = sqldb.Dialect{
	Name:        "sqlite",
	Placeholder: placeholder,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS translations (
			id                    INTEGER PRIMARY KEY AUTOINCREMENT,
			translation_shortname TEXT    NOT NULL UNIQUE,
			year_written_in       INTEGER,
			translation_type      TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS books (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			book_name TEXT NOT NULL UNIQUE,
			testament TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS verses (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			book_id        INTEGER NOT NULL REFERENCES books(id),
			translation_id INTEGER NOT NULL REFERENCES translations(id),
			chapter_num    INTEGER NOT NULL,
			verse_num      INTEGER NOT NULL,
			verse_text     TEXT    NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_verses_ref ON verses(translation_id, book_id, chapter_num, verse_num)`,
	},
}

// Open opens the database file at path. An in-memory database lives in a
// single connection, so the pool is capped at one.
func Open(ctx context.Context, path string) (*sqldb.DB, error) {
	db, err := sqldb.Open(ctx, "sqlite", path, Dialect)
	if err != nil {
		return nil, err
	}
	if strings.Contains(path, ":memory:") {
		db.SQL().SetMaxOpenConns(1)
	}
	return db, nil
}
