package llm

import (
	"strings"
	"unicode/utf8"
)

// quotePairs are wrappers models like to put around a whole post.
var quotePairs = [][2]string{
	{`"`, `"`},
	{"“", "”"},
	{"「", "」"},
	{"'", "'"},
}

// SanitizeCandidate turns raw model output into a single-line post: code
// fences and wrapping quotes are removed, whitespace runs (newlines included)
// collapse to one space, and the result is cut to limit runes when limit > 0.
// The second return value reports whether the text was truncated.
func SanitizeCandidate(text string, limit int) (string, bool) {
	text = stripCodeFence(text)
	text = strings.Join(strings.Fields(text), " ")
	text = stripWrappingQuotes(text)

	if limit > 0 && utf8.RuneCountInString(text) > limit {
		runes := []rune(text)
		return strings.TrimSpace(string(runes[:limit])), true
	}
	return text, false
}

// stripCodeFence removes a markdown code block wrapper and its language tag.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := text[:idx]
		// A short first line with no spaces is a language identifier
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func stripWrappingQuotes(text string) string {
	for _, pair := range quotePairs {
		if len(text) > len(pair[0])+len(pair[1]) &&
			strings.HasPrefix(text, pair[0]) && strings.HasSuffix(text, pair[1]) {
			inner := text[len(pair[0]) : len(text)-len(pair[1])]
			// Leave text like "a" and "b" alone
			if !strings.Contains(inner, pair[0]) && !strings.Contains(inner, pair[1]) {
				return strings.TrimSpace(inner)
			}
		}
	}
	return text
}
