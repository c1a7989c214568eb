// Package mysql is the MySQL scripture store.
package mysql

import (
	"context"

	"scriptura/pkg/store/db/sqldb"

	_ "github.com/go-sql-driver/mysql"
)

func placeholder(int) string {
	return "?"
}

// Dialect is the MySQL flavour of the schema. MySQL lacks
// CREATE INDEX IF NOT EXISTS, so the unique key lives in the table definition.
var Dialect = sqldb.Dialect{
	Name:        "mysql",
	Placeholder: placeholder,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS translations (
			id                    INT AUTO_INCREMENT PRIMARY KEY,
			translation_shortname VARCHAR(32) NOT NULL UNIQUE,
			year_written_in       INT,
			translation_type      VARCHAR(64)
		)`,
		`CREATE TABLE IF NOT EXISTS books (
			id        INT AUTO_INCREMENT PRIMARY KEY,
			book_name VARCHAR(64) NOT NULL UNIQUE,
			testament VARCHAR(8)
		)`,
		`CREATE TABLE IF NOT EXISTS verses (
			id             INT AUTO_INCREMENT PRIMARY KEY,
			book_id        INT  NOT NULL,
			translation_id INT  NOT NULL,
			chapter_num    INT  NOT NULL,
			verse_num      INT  NOT NULL,
			verse_text     TEXT NOT NULL,
			UNIQUE KEY idx_verses_ref (translation_id, book_id, chapter_num, verse_num),
			FOREIGN KEY (book_id) REFERENCES books(id),
			FOREIGN KEY (translation_id) REFERENCES translations(id)
		)`,
	},
}

// Open connects to dsn (e.g. user:pass@tcp(host:3306)/bible?parseTime=true).
func Open(ctx context.Context, dsn string) (*sqldb.DB, error) {
	return sqldb.Open(ctx, "mysql", dsn, Dialect)
}
