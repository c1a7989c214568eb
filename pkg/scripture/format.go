package scripture

import (
	"fmt"
	"strings"
)

// Line is one verse of a passage.
type Line struct {
	Number int
	Text   string
}

// Passage is the resolved text of a Query.
type Passage struct {
	Translation string
	Book        string
	Chapter     int
	Verse       int // 0 for a whole chapter
	Lines       []Line
}

// Format renders the passage for end users:
//
//	John 3:16 (BSB)
//	For God so loved the world...
//
// A whole chapter gets a "<Book> <ch> (<TR>)" header and one "<v>. <text>" line per verse.
func (p Passage) Format() string {
	var sb strings.Builder
	if p.Verse != 0 {
		fmt.Fprintf(&sb, "%s %d:%d (%s)", p.Book, p.Chapter, p.Verse, p.Translation)
		for _, l := range p.Lines {
			sb.WriteString("\n")
			sb.WriteString(l.Text)
		}
		return sb.String()
	}

	fmt.Fprintf(&sb, "%s %d (%s)", p.Book, p.Chapter, p.Translation)
	for _, l := range p.Lines {
		fmt.Fprintf(&sb, "\n%d. %s", l.Number, l.Text)
	}
	return sb.String()
}

// ToolFormat renders the passage for the model, one self-citing line per
// verse: "(<TR>) <Book> <ch>:<v>. <text>".
func (p Passage) ToolFormat() string {
	lines := make([]string, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, fmt.Sprintf("(%s) %s %d:%d. %s", p.Translation, p.Book, p.Chapter, l.Number, l.Text))
	}
	return strings.Join(lines, "\n")
}
