// Package types provides type definitions for structured data used throughout the autopost system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validPersona() Persona {
	return Persona{
		Name:           "TechBot",
		Personality:    "curious and upbeat",
		Tone:           "friendly",
		Interests:      []string{"AI", "open source"},
		KnowledgeLevel: "expert",
	}
}

func TestPersona_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Persona)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *Persona) {}, wantErr: false},
		{name: "missing name", mutate: func(p *Persona) { p.Name = "" }, wantErr: true},
		{name: "missing tone", mutate: func(p *Persona) { p.Tone = "" }, wantErr: true},
		{name: "no interests", mutate: func(p *Persona) { p.Interests = nil }, wantErr: true},
		{name: "blank interest", mutate: func(p *Persona) { p.Interests = []string{""} }, wantErr: true},
		{name: "bad emoji frequency", mutate: func(p *Persona) { p.SpeakingStyle.EmojiFrequency = "always" }, wantErr: true},
		{name: "known emoji frequency", mutate: func(p *Persona) { p.SpeakingStyle.EmojiFrequency = "low" }, wantErr: false},
		{name: "negative length", mutate: func(p *Persona) { p.Constraints.MaxLength = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPersona()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPersona_Defaults(t *testing.T) {
	p := validPersona()
	assert.Equal(t, DefaultMaxPostLength, p.MaxLength())
	assert.Equal(t, DefaultMaxEmojiPerPost, p.MaxEmoji())

	p.Constraints.MaxLength = 280
	p.SpeakingStyle.MaxEmoji = 5
	assert.Equal(t, 280, p.MaxLength())
	assert.Equal(t, 5, p.MaxEmoji())
}
