// Package types provides type definitions for structured data used throughout the autopost system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "github.com/go-playground/validator/v10"

// Default persona limits applied when the persona file leaves them unset
const (
	DefaultMaxPostLength   = 140
	DefaultMaxEmojiPerPost = 2
)

// PersonaFile is the root of a persona YAML document.
type PersonaFile struct {
	Character Persona `yaml:"character" validate:"required"`
}

// Persona describes the voice posts are generated in.
type Persona struct {
	Name           string        `yaml:"name" json:"name" validate:"required"`
	Personality    string        `yaml:"personality" json:"personality" validate:"required"`
	Tone           string        `yaml:"tone" json:"tone" validate:"required"`
	Interests      []string      `yaml:"interests" json:"interests" validate:"required,min=1,dive,required"`
	KnowledgeLevel string        `yaml:"knowledge_level" json:"knowledge_level" validate:"required"`
	SpeakingStyle  SpeakingStyle `yaml:"speaking_style" json:"speaking_style"`
	Constraints    Constraints   `yaml:"constraints" json:"constraints"`
}

// SpeakingStyle holds stylistic hints used when rendering the prompt.
type SpeakingStyle struct {
	SentenceEndings []string `yaml:"sentence_ending" json:"sentence_ending,omitempty"`
	EmojiFrequency  string   `yaml:"emoji_frequency" json:"emoji_frequency,omitempty" validate:"omitempty,oneof=low moderate high"`
	MaxEmoji        int      `yaml:"max_emoji_per_tweet" json:"max_emoji_per_tweet,omitempty" validate:"gte=0"`
	HashtagUsage    bool     `yaml:"hashtag_usage" json:"hashtag_usage,omitempty"`
}

// Constraints are hard limits every accepted post must satisfy.
type Constraints struct {
	MaxLength   int      `yaml:"max_tweet_length" json:"max_tweet_length,omitempty" validate:"gte=0"`
	AvoidTopics []string `yaml:"avoid_topics" json:"avoid_topics,omitempty"`
}

// Validate validates the Persona using the validator.
func (p *Persona) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// MaxLength returns the configured post length limit or the default.
func (p *Persona) MaxLength() int {
	if p.Constraints.MaxLength > 0 {
		return p.Constraints.MaxLength
	}
	return DefaultMaxPostLength
}

// MaxEmoji returns the configured emoji limit or the default.
// A zero value in the file means "use the default"; there is no way to forbid emoji entirely.
func (p *Persona) MaxEmoji() int {
	if p.SpeakingStyle.MaxEmoji > 0 {
		return p.SpeakingStyle.MaxEmoji
	}
	return DefaultMaxEmojiPerPost
}
