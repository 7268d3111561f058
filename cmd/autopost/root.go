package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/autopost/internal/config"
	"github.com/jonathan/autopost/internal/history"
	"github.com/jonathan/autopost/internal/llm"
	"github.com/jonathan/autopost/internal/logging"
	"github.com/jonathan/autopost/internal/novelty"
	"github.com/jonathan/autopost/internal/observability"
)

// deps are the collaborators a command reaches outside the process for.
type deps struct {
	newClient func(ctx context.Context, cfg *config.Config) (llm.Client, error)
	now       func() time.Time
	// logger, when set, replaces the logger built from flags
	logger *zap.Logger
}

func defaultDeps() deps {
	return deps{
		newClient: func(ctx context.Context, cfg *config.Config) (llm.Client, error) {
			return llm.NewClient(ctx, cfg.LLM.ModelConfig(), cfg.LLM.APIKey)
		},
		now: time.Now,
	}
}

// rootOptions is the state shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool

	deps   deps
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd(d deps) *cobra.Command {
	opts := &rootOptions{deps: d}

	cmd := &cobra.Command{
		Use:   "autopost",
		Short: "Persona post generator with a novelty gate",
		Long: `autopost drafts short social posts in a configured persona's voice and
refuses any draft that is a near-duplicate of an earlier post.

Each draft is normalized, split into character shingles and fingerprinted.
A draft is a duplicate when its Jaccard similarity to a previous post reaches
the threshold or its fingerprint lies within the Hamming threshold.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: opts.setup,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to JSON config file (optional)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newProposeCmd(opts), newCheckCmd(opts), newHistoryCmd(opts))
	return cmd
}

// setup loads the configuration and builds the logger.
func (o *rootOptions) setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return withExit(ExitConfig, err)
	}
	o.cfg = cfg

	if o.deps.logger != nil {
		o.logger = o.deps.logger
		return nil
	}
	logger, err := logging.New(o.verbose || cfg.Verbose)
	if err != nil {
		return withExit(ExitConfig, err)
	}
	o.logger = logger
	return nil
}

func (o *rootOptions) checker() (*novelty.Checker, error) {
	checker, err := novelty.NewChecker(o.cfg.Gate.Params())
	if err != nil {
		return nil, withExit(ExitConfig, err)
	}
	return checker, nil
}

// openHistory opens the configured store and loads its entries.
func (o *rootOptions) openHistory(ctx context.Context) (*history.Index, error) {
	store, err := history.OpenStore(ctx, o.cfg.History)
	if err != nil {
		return nil, withExit(ExitInit, fmt.Errorf("failed to open history store: %w", err))
	}
	idx, err := history.Open(ctx, store, o.logger)
	if err != nil {
		_ = store.Close()
		return nil, withExit(ExitInit, err)
	}
	return idx, nil
}

func printer(cmd *cobra.Command) *observability.Printer {
	return observability.NewPrinter(cmd.OutOrStdout())
}
