// Package matching implements the knowledge matching engine: question
// normalization, trigram similarity, tag matching, the tiered scoring
// pipeline, and the full-text relevance index backing the composite score.
package matching

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes a question for comparison: lower-cases,
// folds punctuation into spaces and collapses whitespace runs.
// Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Tokens splits a question into the lower-cased whitespace-delimited words
// used for tag matching. Punctuation is kept; fuzzy matching absorbs it.
func Tokens(question string) []string {
	return strings.Fields(strings.ToLower(question))
}
