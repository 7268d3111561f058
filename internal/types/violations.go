// Package types provides type definitions for structured data used throughout the autopost system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Violation types reported by candidate validation
const (
	ViolationEmpty        = "empty_text"
	ViolationTooLong      = "too_long"
	ViolationAvoidTopic   = "avoided_topic"
	ViolationTooManyEmoji = "too_many_emoji"
)

// Violation represents a single validation failure
type Violation struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Details  string `json:"details"`

	// Optional measurements for length / count checks
	CharCount *int    `json:"char_count,omitempty"`
	Limit     *int    `json:"limit,omitempty"`
	Topic     *string `json:"topic,omitempty"`
}

// Violations represents a collection of validation failures
type Violations struct {
	Violations []Violation `json:"violations"`
}

// HasErrors reports whether any violation has error severity.
func (v *Violations) HasErrors() bool {
	if v == nil {
		return false
	}
	for _, violation := range v.Violations {
		if violation.Severity == "error" {
			return true
		}
	}
	return false
}
