package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"scriptura/pkg/scripture"
)

// Named not-found outcomes of Resolve.
var (
	ErrTranslationNotFound = errors.New("translation not found")
	ErrBookNotFound        = errors.New("book not found")
	ErrChapterNotFound     = errors.New("chapter not found")
	ErrVerseNotFound       = errors.New("verse not found")
)

// TranslationUnavailableError names the requested code and the codes the
// store does hold. It matches ErrTranslationNotFound with errors.Is.
type TranslationUnavailableError struct {
	Requested string
	Available []string
}

func (e *TranslationUnavailableError) Error() string {
	return fmt.Sprintf("translation '%s' is not available; available translations: %s",
		e.Requested, JoinCodes(e.Available))
}

func (e *TranslationUnavailableError) Is(target error) bool {
	return target == ErrTranslationNotFound
}

// JoinCodes renders codes for users: comma separated, or "(none found)".
func JoinCodes(codes []string) string {
	if len(codes) == 0 {
		return "(none found)"
	}
	return strings.Join(codes, ", ")
}

// Resolve looks q up within a single session and returns its text. It never
// substitutes a different translation for a missing one.
func (s *Store) Resolve(ctx context.Context, q scripture.Query) (scripture.Passage, error) {
	var passage scripture.Passage
	err := s.View(ctx, func(r Reader) error {
		tr, err := r.FindTranslation(ctx, q.Translation)
		if err != nil {
			return err
		}
		if tr == nil {
			list, err := r.ListTranslations(ctx)
			if err != nil {
				return err
			}
			return &TranslationUnavailableError{
				Requested: strings.ToUpper(q.Translation),
				Available: TranslationCodes(list),
			}
		}

		book, err := r.FindBook(ctx, q.Book)
		if err != nil {
			return err
		}
		if book == nil {
			return fmt.Errorf("%w: %s", ErrBookNotFound, q.Book)
		}

		passage = scripture.Passage{
			Translation: tr.Shortname,
			Book:        book.Name,
			Chapter:     q.Chapter,
			Verse:       q.Verse,
		}

		if q.HasVerse() {
			v, err := r.FindVerse(ctx, tr, book, q.Chapter, q.Verse)
			if err != nil {
				return err
			}
			if v == nil {
				return fmt.Errorf("%w: %s %d:%d", ErrVerseNotFound, book.Name, q.Chapter, q.Verse)
			}
			passage.Lines = []scripture.Line{{Number: v.Number, Text: v.Text}}
			return nil
		}

		verses, err := r.FindVerses(ctx, tr, book, q.Chapter)
		if err != nil {
			return err
		}
		if len(verses) == 0 {
			return fmt.Errorf("%w: %s %d", ErrChapterNotFound, book.Name, q.Chapter)
		}
		for _, v := range verses {
			passage.Lines = append(passage.Lines, scripture.Line{Number: v.Number, Text: v.Text})
		}
		return nil
	})
	if err != nil {
		return scripture.Passage{}, err
	}
	return passage, nil
}

// IsNotFound reports whether err is one of the named not-found outcomes.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTranslationNotFound) ||
		errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrChapterNotFound) ||
		errors.Is(err, ErrVerseNotFound)
}

// Translations returns the sorted, de-duplicated codes present in the store.
func (s *Store) Translations(ctx context.Context) ([]string, error) {
	var codes []string
	err := s.View(ctx, func(r Reader) error {
		list, err := r.ListTranslations(ctx)
		if err != nil {
			return err
		}
		codes = TranslationCodes(list)
		return nil
	})
	return codes, err
}
