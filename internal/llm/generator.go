package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/autopost/internal/persona"
	"github.com/jonathan/autopost/internal/types"
	"github.com/jonathan/autopost/internal/validation"
)

// Generator drafts posts in a persona's voice. It satisfies the gate's
// Generator interface.
type Generator struct {
	client  Client
	persona *types.Persona
	tier    ModelTier
	logger  *zap.Logger
}

// NewGenerator builds a Generator. A nil logger discards output.
func NewGenerator(client Client, p *types.Persona, tier ModelTier, logger *zap.Logger) (*Generator, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	if p == nil {
		return nil, fmt.Errorf("persona is required")
	}
	if tier == "" {
		tier = TierStandard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{client: client, persona: p, tier: tier, logger: logger}, nil
}

// Generate asks the model for one post about topic and sanitizes the reply.
func (g *Generator) Generate(ctx context.Context, topic string) (string, error) {
	validation.LogInjectionWarning(g.logger, validation.CheckTopic(topic), "topic")

	prompt := persona.PostPrompt(g.persona, topic)
	raw, err := g.client.GenerateContent(ctx, prompt, g.tier)
	if err != nil {
		return "", fmt.Errorf("failed to draft post with %s: %w", g.client.GetModel(g.tier), err)
	}

	text, truncated := SanitizeCandidate(raw, g.persona.MaxLength())
	if truncated {
		g.logger.Warn("generated post exceeded length limit; truncated",
			zap.Int("limit", g.persona.MaxLength()))
	}
	g.logger.Debug("post drafted",
		zap.String("model", g.client.GetModel(g.tier)),
		zap.Int("chars", len([]rune(text))))
	return text, nil
}
