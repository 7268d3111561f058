package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/autopost/internal/gate"
	"github.com/jonathan/autopost/internal/llm"
	"github.com/jonathan/autopost/internal/observability"
	"github.com/jonathan/autopost/internal/persona"
	"github.com/jonathan/autopost/internal/preview"
	"github.com/jonathan/autopost/internal/validation"
)

type proposeOptions struct {
	topic       string
	maxAttempts int
	dryRun      bool
}

func newProposeCmd(root *rootOptions) *cobra.Command {
	opts := &proposeOptions{}
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Generate a post that passes the novelty gate",
		Long: `Drafts posts with the configured model until one is neither invalid for the
persona nor a near-duplicate of history, then records it.

The report goes to stderr. Unless --dry-run is set, the accepted text alone is
written to stdout for the posting client. The Markdown preview and the JSON
payload are written to the output directory afterwards, so a failed preview
write exits with code 4 after the post was recorded and handed over.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPropose(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.topic, "topic", "t", "", "Post topic (default: config topic or TWEET_TOPIC; empty lets the model choose)")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", 0, "Maximum drafts before giving up (default: gate.max_attempts)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Do not hand the post to the posting client")
	return cmd
}

func runPropose(cmd *cobra.Command, root *rootOptions, opts *proposeOptions) error {
	ctx := cmd.Context()
	cfg := root.cfg
	logger := root.logger

	if cmd.Flags().Changed("topic") {
		cfg.Topic = opts.topic
	}
	if opts.dryRun {
		cfg.DryRun = true
	}
	if opts.maxAttempts < 0 {
		return withExit(ExitConfig, fmt.Errorf("--max-attempts must be positive, got %d", opts.maxAttempts))
	}
	maxAttempts := cfg.Gate.MaxAttempts
	if opts.maxAttempts > 0 {
		maxAttempts = opts.maxAttempts
	}

	p, err := persona.Load(cfg.PersonaPath)
	if err != nil {
		return withExit(ExitConfig, err)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return withExit(ExitConfig, err)
	}
	checker, err := root.checker()
	if err != nil {
		return err
	}

	idx, err := root.openHistory(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	client, err := root.deps.newClient(ctx, cfg)
	if err != nil {
		return withExit(ExitInit, fmt.Errorf("failed to create LLM client: %w", err))
	}
	defer func() { _ = client.Close() }()

	tier := cfg.LLM.ModelTier()
	generator, err := llm.NewGenerator(client, p, tier, logger)
	if err != nil {
		return withExit(ExitInit, err)
	}
	g, err := gate.New(idx, checker, generator,
		gate.WithValidator(validation.PersonaValidator{Persona: p}),
		gate.WithLogger(logger),
		gate.WithMaxAttempts(maxAttempts),
	)
	if err != nil {
		return withExit(ExitInit, err)
	}
	writer, err := preview.NewWriter(cfg.OutputDir)
	if err != nil {
		return withExit(ExitOutput, err)
	}

	logger.Info("proposing post",
		zap.String("persona", persona.Describe(p)),
		zap.String("model", client.GetModel(tier)),
		zap.String("topic", cfg.Topic),
		zap.Int("history", idx.Len()),
		zap.Int("max_attempts", maxAttempts),
		zap.Bool("dry_run", cfg.DryRun))

	result, err := g.Propose(ctx, cfg.Topic, maxAttempts)
	if err != nil {
		if ctx.Err() != nil {
			return withExit(ExitInterrupted, err)
		}
		return withExit(ExitOutput, fmt.Errorf("failed to record accepted post: %w", err))
	}

	observability.NewPrinter(cmd.ErrOrStderr()).PrintResult(result)

	// Already in history: hand it over before the preview writes.
	if result.Accepted() && !cfg.DryRun {
		fmt.Fprintln(cmd.OutOrStdout(), result.Text)
	}

	meta := preview.NewMetadata(p.Name, client.GetModel(tier), cfg.Topic, root.deps.now())
	if result.Accepted() {
		if err := writer.AppendMarkdown(result.Text, meta); err != nil {
			return withExit(ExitOutput, err)
		}
	}
	if err := writer.WritePayload(preview.NewPayload(result, meta, cfg.DryRun)); err != nil {
		return withExit(ExitOutput, err)
	}

	if !result.Accepted() {
		logger.Warn("no novel post", zap.String("run_id", result.RunID), zap.Int("attempts", result.Attempts))
		return withExit(ExitGeneration, exhaustionError(result))
	}

	logger.Info("post accepted",
		zap.String("run_id", result.RunID),
		zap.Int("attempts", result.Attempts),
		zap.Stringer("fingerprint", result.Entry.Fingerprint))
	return nil
}

// exhaustionError names the last model error when every attempt failed to
// generate, since that is usually a credentials or quota problem.
func exhaustionError(result *gate.Result) error {
	for _, r := range result.Rejections {
		if r.Reason != gate.ReasonGenerationFailed {
			return result.Err()
		}
	}
	if n := len(result.Rejections); n > 0 {
		return fmt.Errorf("%w: %w: %s", result.Err(), gate.ErrGeneration, result.Rejections[n-1].Error)
	}
	return result.Err()
}
