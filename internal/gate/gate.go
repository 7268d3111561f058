// Package gate runs the bounded generate-and-check loop that decides whether an
// auto-generated post is new enough to publish.
//
// Each attempt moves through Generating and Checking and ends Accepted or
// Rejected. A rejected attempt loops back to Generating until the attempt
// budget is spent, which ends the run Exhausted. Only an accepted candidate
// is written to history, and it is written before Propose returns.
package gate

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/autopost/internal/novelty"
	"github.com/jonathan/autopost/internal/types"
)

// DefaultMaxAttempts bounds a run when neither the caller nor an option sets a limit.
const DefaultMaxAttempts = 3

// State is a step of the retry state machine.
type State string

// Gate states
const (
	StateGenerating State = "generating"
	StateChecking   State = "checking"
	StateAccepted   State = "accepted"
	StateRejected   State = "rejected"
	StateExhausted  State = "exhausted"
)

// Reason explains why an attempt was rejected.
type Reason string

// Rejection reasons
const (
	ReasonJaccard          Reason = "jaccard"
	ReasonHamming          Reason = "hamming"
	ReasonEmpty            Reason = "empty"
	ReasonInvalid          Reason = "invalid"
	ReasonGenerationFailed Reason = "generation_failed"
)

// Generator produces one candidate post for a topic.
type Generator interface {
	Generate(ctx context.Context, topic string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, topic string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, topic string) (string, error) {
	return f(ctx, topic)
}

// Validator inspects a raw candidate before it is compared with history.
// Any error-severity violation rejects the attempt.
type Validator interface {
	Validate(text string) []types.Violation
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(text string) []types.Violation

// Validate calls f.
func (f ValidatorFunc) Validate(text string) []types.Violation {
	return f(text)
}

// History is the part of a history index the gate needs.
// *history.Index satisfies it.
type History interface {
	Entries() []types.Entry
	Append(ctx context.Context, entry types.Entry) error
}

// Rejection records one attempt that did not produce an accepted post.
type Rejection struct {
	Attempt    int               `json:"attempt"`
	Reason     Reason            `json:"reason"`
	Text       string            `json:"text,omitempty"`
	Decision   *novelty.Decision `json:"decision,omitempty"`
	Violations []types.Violation `json:"violations,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Result is the outcome of one Propose run.
type Result struct {
	RunID string `json:"run_id"`
	// State is StateAccepted or StateExhausted
	State    State            `json:"state"`
	Text     string           `json:"text,omitempty"`
	Entry    types.Entry      `json:"entry"`
	Decision novelty.Decision `json:"decision"`
	Attempts int              `json:"attempts"`

	Rejections []Rejection `json:"rejections,omitempty"`
	// LastCandidate is the final rejected text, kept for diagnostics only.
	// It must never be published.
	LastCandidate string `json:"last_candidate,omitempty"`
}

// Accepted reports whether the run produced a novel post.
func (r *Result) Accepted() bool {
	return r != nil && r.State == StateAccepted
}

// Err returns ErrNoNovelContent for an exhausted run and nil otherwise.
func (r *Result) Err() error {
	if r != nil && r.State == StateExhausted {
		return ErrNoNovelContent
	}
	return nil
}

// Gate couples a generator with the similarity checker and history.
type Gate struct {
	history     History
	checker     *novelty.Checker
	generator   Generator
	validator   Validator
	logger      *zap.Logger
	maxAttempts int

	// mu makes check-then-append atomic so concurrent runs cannot accept
	// two near-identical posts.
	mu sync.Mutex
}

// Option configures a Gate.
type Option func(*Gate)

// WithValidator adds a candidate validator.
func WithValidator(v Validator) Option {
	return func(g *Gate) { g.validator = v }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMaxAttempts sets the attempt limit used when Propose is given none.
func WithMaxAttempts(n int) Option {
	return func(g *Gate) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// New builds a Gate.
func New(history History, checker *novelty.Checker, generator Generator, opts ...Option) (*Gate, error) {
	if history == nil {
		return nil, fmt.Errorf("history is required")
	}
	if checker == nil {
		return nil, fmt.Errorf("checker is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}

	g := &Gate{
		history:     history,
		checker:     checker,
		generator:   generator,
		logger:      zap.NewNop(),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// MaxAttempts returns the default attempt limit.
func (g *Gate) MaxAttempts() int {
	return g.maxAttempts
}

// Propose generates candidates for topic until one is novel or maxAttempts
// attempts have been rejected. maxAttempts <= 0 uses the gate's default.
//
// An accepted candidate is durably appended to history before Propose returns.
// Exhaustion is not an error: the Result has State StateExhausted and its Err
// method returns ErrNoNovelContent. Cancellation of ctx aborts the run with
// ctx.Err(), and a failed history write returns the store error with nothing
// reported as accepted.
func (g *Gate) Propose(ctx context.Context, topic string, maxAttempts int) (*Result, error) {
	if maxAttempts <= 0 {
		maxAttempts = g.maxAttempts
	}

	runID := uuid.NewString()
	logger := g.logger.With(zap.String("run_id", runID), zap.String("topic", topic))
	result := &Result{RunID: runID, State: StateGenerating}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Attempts = attempt
		logger.Debug("state", zap.Int("attempt", attempt), zap.String("state", string(StateGenerating)))

		raw, err := g.generator.Generate(ctx, topic)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			genErr := &GenerationError{Attempt: attempt, Message: "generator returned an error", Cause: err}
			g.reject(logger, result, Rejection{Attempt: attempt, Reason: ReasonGenerationFailed, Error: genErr.Error()})
			continue
		}

		logger.Debug("state", zap.Int("attempt", attempt), zap.String("state", string(StateChecking)))
		rejection, accepted, err := g.check(ctx, attempt, raw, result)
		if err != nil {
			return nil, err
		}
		if accepted {
			logger.Info("candidate accepted",
				zap.Int("attempt", attempt),
				zap.Int("compared", result.Decision.Compared),
				zap.Float64("best_jaccard", result.Decision.BestJaccard),
				zap.Int("min_hamming", result.Decision.MinHamming),
				zap.Stringer("fingerprint", result.Entry.Fingerprint))
			return result, nil
		}
		g.reject(logger, result, rejection)
	}

	result.State = StateExhausted
	logger.Warn("no novel candidate", zap.Int("attempts", result.Attempts), zap.Error(ErrNoNovelContent))
	return result, nil
}

// check runs one Checking step. On acceptance result is filled in and the
// entry is already in history.
func (g *Gate) check(ctx context.Context, attempt int, raw string, result *Result) (Rejection, bool, error) {
	candidate := g.checker.Prepare(raw)
	rejection := Rejection{Attempt: attempt, Text: raw}

	if candidate.Empty() {
		rejection.Reason = ReasonEmpty
		return rejection, false, nil
	}

	if g.validator != nil {
		violations := g.validator.Validate(raw)
		set := types.Violations{Violations: violations}
		if set.HasErrors() {
			rejection.Reason = ReasonInvalid
			rejection.Violations = violations
			return rejection, false, nil
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	decision := g.checker.CheckCandidate(candidate, g.history.Entries())
	if decision.Duplicate {
		rejection.Reason = Reason(decision.Reason)
		rejection.Decision = &decision
		return rejection, false, nil
	}

	entry := candidate.Entry()
	if err := g.history.Append(ctx, entry); err != nil {
		return rejection, false, err
	}

	result.State = StateAccepted
	result.Text = raw
	result.Entry = entry
	result.Decision = decision
	return rejection, true, nil
}

func (g *Gate) reject(logger *zap.Logger, result *Result, rejection Rejection) {
	result.State = StateRejected
	result.Rejections = append(result.Rejections, rejection)
	if rejection.Text != "" {
		result.LastCandidate = rejection.Text
	}

	fields := []zap.Field{
		zap.Int("attempt", rejection.Attempt),
		zap.String("reason", string(rejection.Reason)),
	}
	if rejection.Decision != nil {
		fields = append(fields,
			zap.Int("match_index", rejection.Decision.MatchIndex),
			zap.Float64("jaccard", rejection.Decision.Match.Jaccard),
			zap.Int("hamming", rejection.Decision.Match.Hamming))
	}
	if rejection.Error != "" {
		fields = append(fields, zap.String("error", rejection.Error))
	}
	logger.Info("candidate rejected", fields...)
}
