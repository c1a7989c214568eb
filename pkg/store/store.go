// Package store is the read-only scripture repository: translations, books
// and verses. Misses are reported as nil results, never as errors.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Translation is one edition of the text, identified by its short code.
type Translation struct {
	ID        int64  `json:"id"`
	Shortname string `json:"shortname"` // canonical upper-case code, e.g. "BSB"
	Year      int    `json:"year,omitempty"`
	Type      string `json:"type,omitempty"`
}

// Book is a book of the corpus, looked up by exact name.
type Book struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Testament string `json:"testament,omitempty"`
}

// Verse is a single verse row. (TranslationID, BookID, Chapter, Number) is unique.
type Verse struct {
	ID            int64  `json:"id"`
	TranslationID int64  `json:"translation_id"`
	BookID        int64  `json:"book_id"`
	Chapter       int    `json:"chapter"`
	Number        int    `json:"number"`
	Text          string `json:"text"`
}

// Reader is the set of lookups the router and the tools rely on.
type Reader interface {
	// FindTranslation matches code case-insensitively.
	FindTranslation(ctx context.Context, code string) (*Translation, error)
	ListTranslations(ctx context.Context) ([]*Translation, error)
	// FindBook matches name exactly.
	FindBook(ctx context.Context, name string) (*Book, error)
	FindVerse(ctx context.Context, tr *Translation, book *Book, chapter, verse int) (*Verse, error)
	// FindVerses returns the chapter ordered by ascending verse number.
	FindVerses(ctx context.Context, tr *Translation, book *Book, chapter int) ([]*Verse, error)
}

// Session is a Reader bound to one acquired connection.
type Session interface {
	Reader
	Close() error
}

// Driver hands out sessions over a backing database.
type Driver interface {
	Acquire(ctx context.Context) (Session, error)
	Close() error
}

// Store scopes every lookup to a session. It is created once at startup and
// shared by all requests.
type Store struct {
	driver Driver
}

// New wraps driver.
func New(driver Driver) *Store {
	return &Store{driver: driver}
}

// View acquires a session, runs fn and releases the session on every exit
// path, panics included.
func (s *Store) View(ctx context.Context, fn func(Reader) error) (err error) {
	sess, err := s.driver.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire store session: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("release store session: %w", cerr)
		}
	}()
	return fn(sess)
}

// Close releases the driver.
func (s *Store) Close() error {
	return s.driver.Close()
}

// TranslationCodes lists the distinct translation codes, sorted.
func TranslationCodes(list []*Translation) []string {
	seen := make(map[string]bool, len(list))
	codes := make([]string, 0, len(list))
	for _, t := range list {
		code := strings.ToUpper(t.Shortname)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
