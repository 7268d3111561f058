// Package novelty decides whether candidate text is a lexical near-duplicate of previously accepted text.
package novelty

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes raw text into the form used for comparison.
//
// The text is NFKC-normalized (full-width Latin and half-width kana collapse to
// their canonical forms), case folded, and reduced to letters, digits and
// combining marks of any script. Every other rune acts as a separator, and runs
// of separators become a single space. Leading and trailing separators are dropped.
// Empty input yields empty output.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	// cases.Caser is stateful, so each call gets its own.
	text := cases.Fold().String(norm.NFKC.String(raw))

	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		if !isSignificant(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// isSignificant reports whether r carries lexical content.
func isSignificant(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}
