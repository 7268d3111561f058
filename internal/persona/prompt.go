package persona

import (
	"strconv"
	"strings"

	"github.com/jonathan/autopost/internal/prompts"
	"github.com/jonathan/autopost/internal/types"
	"github.com/jonathan/autopost/internal/validation"
)

var emojiFrequencyText = map[string]string{
	"low":      "sparingly",
	"moderate": "moderately",
	"high":     "freely",
}

// SystemPrompt renders the persona description given to the model.
func SystemPrompt(p *types.Persona) string {
	var interests strings.Builder
	for i, interest := range p.Interests {
		if i > 0 {
			interests.WriteString("\n")
		}
		interests.WriteString("- " + interest)
	}

	return prompts.Render(prompts.PostFile, "system", map[string]string{
		"Name":           p.Name,
		"Personality":    p.Personality,
		"Tone":           p.Tone,
		"KnowledgeLevel": p.KnowledgeLevel,
		"Interests":      interests.String(),
		"Style":          styleSection(p),
		"Constraints":    constraintsSection(p),
	})
}

// PostPrompt renders the full generation prompt for topic. An empty topic lets
// the model pick one of the persona's interests.
func PostPrompt(p *types.Persona, topic string) string {
	topicText := prompts.MustGet(prompts.PostFile, "no-topic")
	if strings.TrimSpace(topic) != "" {
		topicText = validation.QuoteTopic(validation.StripInjectionAttempts(topic))
	}

	avoid := ""
	if len(p.Constraints.AvoidTopics) > 0 {
		avoid = "\n- Avoid these topics: " + strings.Join(p.Constraints.AvoidTopics, ", ")
	}

	return prompts.Render(prompts.PostFile, "generate-post", map[string]string{
		"System":    SystemPrompt(p),
		"Topic":     topicText,
		"MaxLength": strconv.Itoa(p.MaxLength()),
		"MaxEmoji":  strconv.Itoa(p.MaxEmoji()),
		"Avoid":     avoid,
	})
}

func styleSection(p *types.Persona) string {
	style := p.SpeakingStyle
	lines := []string{"", "", "[Speaking style]"}
	if len(style.SentenceEndings) > 0 {
		lines = append(lines, "- Vary sentence endings between: "+strings.Join(style.SentenceEndings, ", "))
	}

	freq, ok := emojiFrequencyText[style.EmojiFrequency]
	if !ok {
		freq = emojiFrequencyText["moderate"]
	}
	lines = append(lines, "- Use emoji "+freq+" (at most "+strconv.Itoa(p.MaxEmoji())+")")

	if style.HashtagUsage {
		lines = append(lines, "- Use hashtags where they fit")
	}
	return strings.Join(lines, "\n")
}

func constraintsSection(p *types.Persona) string {
	lines := []string{"", "", "[Constraints]", "- Keep every post within " + strconv.Itoa(p.MaxLength()) + " characters"}
	if len(p.Constraints.AvoidTopics) > 0 {
		lines = append(lines, "- Avoid the following topics:")
		for _, topic := range p.Constraints.AvoidTopics {
			lines = append(lines, "  * "+topic)
		}
	}
	return strings.Join(lines, "\n")
}
