package scripture

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// referencePattern matches "[1-3] <book words> <chapter>[:<verse>] [<translation>]"
// against the whole input. The book is matched lazily so a trailing
// translation code is never swallowed into it.
var referencePattern = regexp.MustCompile(
	`(?i)^([1-3]?)\s*([a-z]+(?:\s+[a-z]+)*?)\s+(\d+)(?::(\d+))?(?:\s+([a-z][a-z0-9]*))?$`,
)

// lowerWords stay lower-case inside multi-word book names ("Song of Solomon").
var lowerWords = map[string]bool{"of": true, "the": true}

// Parser recognises scripture references in free text.
type Parser struct {
	// DefaultTranslation is applied when the text names none.
	DefaultTranslation string
}

// NewParser returns a parser defaulting to translation (or DefaultTranslation when empty).
func NewParser(translation string) *Parser {
	if translation == "" {
		translation = DefaultTranslation
	}
	return &Parser{DefaultTranslation: strings.ToUpper(translation)}
}

// Parse returns the query the text denotes. The boolean is false when the
// text is not a bare reference; that is a normal outcome, not an error.
func (p *Parser) Parse(text string) (Query, bool) {
	m := referencePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Query{}, false
	}

	chapter, err := strconv.Atoi(m[3])
	if err != nil || chapter < 1 {
		return Query{}, false
	}

	verse := 0
	if m[4] != "" {
		verse, err = strconv.Atoi(m[4])
		if err != nil || verse < 1 {
			return Query{}, false
		}
	}

	translation := p.DefaultTranslation
	if translation == "" {
		translation = DefaultTranslation
	}
	if m[5] != "" {
		translation = strings.ToUpper(m[5])
	}

	return Query{
		Book:        normalizeBook(m[1], m[2]),
		Chapter:     chapter,
		Verse:       verse,
		Translation: translation,
	}, true
}

// normalizeBook title-cases the book words and re-attaches the leading numeral,
// so "1john" and "1 JOHN" both become "1 John".
func normalizeBook(numeral, name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		lw := strings.ToLower(w)
		if i > 0 && lowerWords[lw] {
			words[i] = lw
			continue
		}
		r := []rune(lw)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	book := strings.Join(words, " ")
	if numeral != "" {
		book = numeral + " " + book
	}
	return book
}
