package scripture

import "strings"

// commentaryKeywords signal that the user wants explanation, not raw text.
var commentaryKeywords = []string{
	"explain",
	"meaning",
	"what does",
	"why does",
	"interpret",
	"commentary",
	"compare",
	"background",
	"context",
	"sermon",
}

// WantsCommentary reports whether text contains any commentary keyword
// (case-insensitive substring match).
func WantsCommentary(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range commentaryKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// CommentaryKeywords returns a copy of the keyword list.
func CommentaryKeywords() []string {
	return append([]string(nil), commentaryKeywords...)
}
