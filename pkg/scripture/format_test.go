package scripture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPassageFormatVerse(t *testing.T) {
	p := Passage{
		Translation: "BSB", Book: "John", Chapter: 3, Verse: 16,
		Lines: []Line{{Number: 16, Text: "For God so loved the world"}},
	}
	assert.Equal(t, "John 3:16 (BSB)\nFor God so loved the world", p.Format())
	assert.Equal(t, "(BSB) John 3:16. For God so loved the world", p.ToolFormat())
}

func TestPassageFormatChapter(t *testing.T) {
	p := Passage{
		Translation: "KJV", Book: "Psalms", Chapter: 117,
		Lines: []Line{
			{Number: 1, Text: "O praise the LORD, all ye nations"},
			{Number: 2, Text: "For his merciful kindness is great toward us"},
		},
	}
	assert.Equal(t,
		"Psalms 117 (KJV)\n1. O praise the LORD, all ye nations\n2. For his merciful kindness is great toward us",
		p.Format())
	assert.Equal(t,
		"(KJV) Psalms 117:1. O praise the LORD, all ye nations\n(KJV) Psalms 117:2. For his merciful kindness is great toward us",
		p.ToolFormat())
}
