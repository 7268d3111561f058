// Package validation checks generated posts against persona constraints and
// screens caller-supplied prompt input.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/autopost/internal/types"
)

const severityError = "error"

// CheckCandidate validates a generated post against the persona's hard limits:
// non-empty text, length in runes, avoided topics (case-insensitive substring)
// and emoji count. It returns nil when the post is clean.
func CheckCandidate(text string, persona *types.Persona) []types.Violation {
	var violations []types.Violation

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []types.Violation{{
			Type:     types.ViolationEmpty,
			Severity: severityError,
			Details:  "post text is empty",
		}}
	}

	maxLength := types.DefaultMaxPostLength
	maxEmoji := types.DefaultMaxEmojiPerPost
	var avoid []string
	if persona != nil {
		maxLength = persona.MaxLength()
		maxEmoji = persona.MaxEmoji()
		avoid = persona.Constraints.AvoidTopics
	}

	if length := utf8.RuneCountInString(trimmed); length > maxLength {
		violations = append(violations, types.Violation{
			Type:      types.ViolationTooLong,
			Severity:  severityError,
			Details:   fmt.Sprintf("post is %d characters, limit is %d", length, maxLength),
			CharCount: intPtr(length),
			Limit:     intPtr(maxLength),
		})
	}

	lower := strings.ToLower(trimmed)
	for _, topic := range avoid {
		needle := strings.ToLower(strings.TrimSpace(topic))
		if needle == "" {
			continue
		}
		if strings.Contains(lower, needle) {
			violations = append(violations, types.Violation{
				Type:     types.ViolationAvoidTopic,
				Severity: severityError,
				Details:  fmt.Sprintf("post mentions avoided topic %q", topic),
				Topic:    strPtr(topic),
			})
		}
	}

	if count := CountEmoji(trimmed); count > maxEmoji {
		violations = append(violations, types.Violation{
			Type:      types.ViolationTooManyEmoji,
			Severity:  severityError,
			Details:   fmt.Sprintf("post has %d emoji, limit is %d", count, maxEmoji),
			CharCount: intPtr(count),
			Limit:     intPtr(maxEmoji),
		})
	}

	return violations
}

// CountEmoji counts pictographic runes. Variation selectors, skin tone
// modifiers and joiners are not counted on their own.
func CountEmoji(text string) int {
	count := 0
	for _, r := range text {
		if isEmoji(r) {
			count++
		}
	}
	return count
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tone modifiers
		return false
	case r >= 0x1F600 && r <= 0x1F64F, // emoticons
		r >= 0x1F300 && r <= 0x1F5FF, // symbols and pictographs
		r >= 0x1F680 && r <= 0x1F6FF, // transport and map
		r >= 0x1F900 && r <= 0x1F9FF, // supplemental symbols
		r >= 0x1FA70 && r <= 0x1FAFF,
		r >= 0x1F1E6 && r <= 0x1F1FF, // regional indicators
		r >= 0x2600 && r <= 0x26FF,   // misc symbols
		r >= 0x2702 && r <= 0x27B0:   // dingbats
		return true
	}
	return false
}

// PersonaValidator checks candidates against one persona.
type PersonaValidator struct {
	Persona *types.Persona
}

// Validate implements the gate's candidate validator.
func (v PersonaValidator) Validate(text string) []types.Violation {
	return CheckCandidate(text, v.Persona)
}

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}
