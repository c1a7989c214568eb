package router

import (
	"errors"
	"fmt"

	"scriptura/pkg/store"
)

// Explain renders err as a sentence safe to show an end user.
func Explain(err error) string {
	var unavailable *TranslationUnavailableError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &unavailable):
		return fmt.Sprintf("Translation '%s' is not available. Available translations: %s.",
			unavailable.Requested, store.JoinCodes(unavailable.Available))
	case errors.Is(err, ErrBookNotFound):
		return "Book not found."
	case errors.Is(err, ErrChapterNotFound):
		return "Chapter not found."
	case errors.Is(err, ErrVerseNotFound):
		return "Verse not found."
	case errors.Is(err, ErrAgent):
		return "Sorry, I could not work out an answer right now. Please try again."
	}
	return "Something went wrong while looking that up."
}
