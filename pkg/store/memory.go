package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Acquire after Close.
var ErrClosed = errors.New("store: driver closed")

type verseKey struct {
	translationID, bookID int64
	chapter, number       int
}

// MemoryDriver serves a Fixture from maps. It backs tests and the
// "memory" store driver.
type MemoryDriver struct {
	mu           sync.RWMutex
	translations map[string]*Translation // upper-case code
	books        map[string]*Book        // exact name
	verses       map[verseKey]*Verse
	closed       bool

	open atomic.Int64
}

// NewMemoryDriver indexes f. A nil fixture yields an empty store.
func NewMemoryDriver(f *Fixture) *MemoryDriver {
	d := &MemoryDriver{
		translations: make(map[string]*Translation),
		books:        make(map[string]*Book),
		verses:       make(map[verseKey]*Verse),
	}
	if f == nil {
		return d
	}
	for i := range f.Translations {
		t := f.Translations[i]
		t.Shortname = strings.ToUpper(t.Shortname)
		d.translations[t.Shortname] = &t
	}
	for i := range f.Books {
		b := f.Books[i]
		d.books[b.Name] = &b
	}
	for i := range f.Verses {
		v := f.Verses[i]
		d.verses[verseKey{v.TranslationID, v.BookID, v.Chapter, v.Number}] = &v
	}
	return d
}

func (d *MemoryDriver) Acquire(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	closed := d.closed
	d.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	d.open.Add(1)
	return &memorySession{d: d}, nil
}

func (d *MemoryDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// OpenSessions reports sessions acquired and not yet closed.
func (d *MemoryDriver) OpenSessions() int64 {
	return d.open.Load()
}

type memorySession struct {
	d    *MemoryDriver
	once sync.Once
}

func (s *memorySession) Close() error {
	s.once.Do(func() { s.d.open.Add(-1) })
	return nil
}

func (s *memorySession) FindTranslation(ctx context.Context, code string) (*Translation, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	if t, ok := s.d.translations[strings.ToUpper(strings.TrimSpace(code))]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (s *memorySession) ListTranslations(ctx context.Context) ([]*Translation, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	list := make([]*Translation, 0, len(s.d.translations))
	for _, t := range s.d.translations {
		cp := *t
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Shortname < list[j].Shortname })
	return list, nil
}

func (s *memorySession) FindBook(ctx context.Context, name string) (*Book, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	if b, ok := s.d.books[name]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (s *memorySession) FindVerse(ctx context.Context, tr *Translation, book *Book, chapter, verse int) (*Verse, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	if v, ok := s.d.verses[verseKey{tr.ID, book.ID, chapter, verse}]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

func (s *memorySession) FindVerses(ctx context.Context, tr *Translation, book *Book, chapter int) ([]*Verse, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	var list []*Verse
	for k, v := range s.d.verses {
		if k.translationID == tr.ID && k.bookID == book.ID && k.chapter == chapter {
			cp := *v
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Number < list[j].Number })
	return list, nil
}
