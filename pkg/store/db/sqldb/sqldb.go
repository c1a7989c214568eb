// Package sqldb implements store.Driver over database/sql. The per-database
// packages supply the dialect: placeholder style and DDL.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"scriptura/pkg/store"
)

// Dialect captures what differs between SQL backends.
type Dialect struct {
	Name string
	// Placeholder returns the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// Schema creates the tables and indexes if they are missing.
	Schema []string
}

// DB is a store.Driver backed by a *sql.DB pool.
type DB struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an opened pool.
func New(db *sql.DB, dialect Dialect) *DB {
	return &DB{db: db, dialect: dialect}
}

// Open opens and pings a pool for driverName.
func Open(ctx context.Context, driverName, dsn string, dialect Dialect) (*DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.Name, err)
	}
	return New(db, dialect), nil
}

// SQL exposes the pool for driver-specific tuning.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// Acquire pins one pooled connection for the session's lifetime.
func (d *DB) Acquire(ctx context.Context) (store.Session, error) {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &session{conn: conn, ph: d.dialect.Placeholder}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// EnsureTables creates the schema. Production databases are populated by the
// ingestion pipeline; this exists for tests and local demos.
func (d *DB) EnsureTables(ctx context.Context) error {
	for _, s := range d.dialect.Schema {
		if _, err := d.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("ensure tables: %w", err)
		}
	}
	return nil
}

// Load inserts f in a single transaction.
func (d *DB) Load(ctx context.Context, f *store.Fixture) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	ph := d.dialect.Placeholder
	insertTr := fmt.Sprintf(
		`INSERT INTO translations (id, translation_shortname, year_written_in, translation_type) VALUES (%s, %s, %s, %s)`,
		ph(1), ph(2), ph(3), ph(4))
	for _, t := range f.Translations {
		if _, err = tx.ExecContext(ctx, insertTr, t.ID, t.Shortname, t.Year, t.Type); err != nil {
			return fmt.Errorf("insert translation %s: %w", t.Shortname, err)
		}
	}

	insertBook := fmt.Sprintf(`INSERT INTO books (id, book_name, testament) VALUES (%s, %s, %s)`, ph(1), ph(2), ph(3))
	for _, b := range f.Books {
		if _, err = tx.ExecContext(ctx, insertBook, b.ID, b.Name, b.Testament); err != nil {
			return fmt.Errorf("insert book %s: %w", b.Name, err)
		}
	}

	insertVerse := fmt.Sprintf(
		`INSERT INTO verses (id, book_id, translation_id, chapter_num, verse_num, verse_text) VALUES (%s, %s, %s, %s, %s, %s)`,
		ph(1), ph(2), ph(3), ph(4), ph(5), ph(6))
	for _, v := range f.Verses {
		if _, err = tx.ExecContext(ctx, insertVerse, v.ID, v.BookID, v.TranslationID, v.Chapter, v.Number, v.Text); err != nil {
			return fmt.Errorf("insert verse %d: %w", v.ID, err)
		}
	}

	return tx.Commit()
}

type session struct {
	conn *sql.Conn
	ph   func(int) string
}

func (s *session) Close() error {
	return s.conn.Close()
}

func (s *session) FindTranslation(ctx context.Context, code string) (*store.Translation, error) {
	query := fmt.Sprintf(
		`SELECT id, translation_shortname, COALESCE(year_written_in, 0), COALESCE(translation_type, '')
		 FROM translations WHERE UPPER(translation_shortname) = %s`, s.ph(1))
	t := &store.Translation{}
	err := s.conn.QueryRowContext(ctx, query, strings.ToUpper(strings.TrimSpace(code))).
		Scan(&t.ID, &t.Shortname, &t.Year, &t.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.Shortname = strings.ToUpper(t.Shortname)
	return t, nil
}

func (s *session) ListTranslations(ctx context.Context) ([]*store.Translation, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, translation_shortname, COALESCE(year_written_in, 0), COALESCE(translation_type, '')
		 FROM translations ORDER BY translation_shortname`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*store.Translation
	for rows.Next() {
		t := &store.Translation{}
		if err := rows.Scan(&t.ID, &t.Shortname, &t.Year, &t.Type); err != nil {
			return nil, err
		}
		t.Shortname = strings.ToUpper(t.Shortname)
		list = append(list, t)
	}
	return list, rows.Err()
}

func (s *session) FindBook(ctx context.Context, name string) (*store.Book, error) {
	query := fmt.Sprintf(`SELECT id, book_name, COALESCE(testament, '') FROM books WHERE book_name = %s`, s.ph(1))
	b := &store.Book{}
	err := s.conn.QueryRowContext(ctx, query, name).Scan(&b.ID, &b.Name, &b.Testament)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

const verseColumns = `id, translation_id, book_id, chapter_num, verse_num, verse_text`

func (s *session) FindVerse(ctx context.Context, tr *store.Translation, book *store.Book, chapter, verse int) (*store.Verse, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM verses
		 WHERE translation_id = %s AND book_id = %s AND chapter_num = %s AND verse_num = %s`,
		verseColumns, s.ph(1), s.ph(2), s.ph(3), s.ph(4))
	v := &store.Verse{}
	err := s.conn.QueryRowContext(ctx, query, tr.ID, book.ID, chapter, verse).
		Scan(&v.ID, &v.TranslationID, &v.BookID, &v.Chapter, &v.Number, &v.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *session) FindVerses(ctx context.Context, tr *store.Translation, book *store.Book, chapter int) ([]*store.Verse, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM verses
		 WHERE translation_id = %s AND book_id = %s AND chapter_num = %s
		 ORDER BY verse_num ASC`,
		verseColumns, s.ph(1), s.ph(2), s.ph(3))
	rows, err := s.conn.QueryContext(ctx, query, tr.ID, book.ID, chapter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*store.Verse
	for rows.Next() {
		v := &store.Verse{}
		if err := rows.Scan(&v.ID, &v.TranslationID, &v.BookID, &v.Chapter, &v.Number, &v.Text); err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}
