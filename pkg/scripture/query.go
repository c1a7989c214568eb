// Package scripture holds the pure, I/O-free pieces of reference handling:
// the structured query, the reference parser, the commentary classifier and
// passage formatting.
package scripture

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultTranslation is used when neither the reference nor the configuration names one.
const DefaultTranslation = "BSB"

// ErrInvalidQuery is returned by Validate.
var ErrInvalidQuery = errors.New("invalid scripture query")

// Query is a structured reference: a whole chapter when Verse is 0, a single
// verse otherwise. Values are built once and never modified.
type Query struct {
	Book        string `json:"book"`
	Chapter     int    `json:"chapter"`
	Verse       int    `json:"verse,omitempty"`
	Translation string `json:"translation"`
}

// HasVerse reports whether the query names a single verse.
func (q Query) HasVerse() bool {
	return q.Verse != 0
}

// Validate checks the invariants parsed queries satisfy by construction.
// Queries assembled from tool arguments go through it before touching the store.
func (q Query) Validate() error {
	switch {
	case strings.TrimSpace(q.Book) == "":
		return fmt.Errorf("%w: book is required", ErrInvalidQuery)
	case q.Chapter < 1:
		return fmt.Errorf("%w: chapter must be >= 1, got %d", ErrInvalidQuery, q.Chapter)
	case q.Verse < 0:
		return fmt.Errorf("%w: verse must be >= 1, got %d", ErrInvalidQuery, q.Verse)
	case strings.TrimSpace(q.Translation) == "":
		return fmt.Errorf("%w: translation is required", ErrInvalidQuery)
	}
	return nil
}

// String renders the reference, e.g. "John 3:16 (BSB)" or "Psalms 23 (KJV)".
func (q Query) String() string {
	if q.HasVerse() {
		return fmt.Sprintf("%s %d:%d (%s)", q.Book, q.Chapter, q.Verse, q.Translation)
	}
	return fmt.Sprintf("%s %d (%s)", q.Book, q.Chapter, q.Translation)
}
