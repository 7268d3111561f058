package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/autopost/internal/history"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and maintain the post history",
	}
	cmd.AddCommand(
		newHistoryListCmd(root),
		newHistoryStatsCmd(root),
		newHistoryResetCmd(root),
		newHistoryAddCmd(root),
	)
	return cmd
}

func newHistoryListCmd(root *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the most recent entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			idx, err := root.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = idx.Close() }()

			printer(cmd).PrintHistory(idx.Entries(), limit)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Entries to show (0 for all)")
	return cmd
}

func newHistoryStatsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			idx, err := root.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = idx.Close() }()

			printer(cmd).PrintSummary(history.Summarize(idx.Entries()))
			return nil
		},
	}
}

func newHistoryResetCmd(root *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every history entry",
		Long: `Deletes every entry of the configured corpus. The store is reset without
loading it first, so a corrupt history file can be recovered this way.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return withExit(ExitConfig, fmt.Errorf("refusing to reset history without --yes"))
			}
			ctx := cmd.Context()
			store, err := history.OpenStore(ctx, root.cfg.History)
			if err != nil {
				return withExit(ExitInit, fmt.Errorf("failed to open history store: %w", err))
			}
			defer func() { _ = store.Close() }()

			if err := store.Reset(ctx); err != nil {
				return withExit(ExitOutput, err)
			}
			root.logger.Info("history reset",
				zap.String("backend", string(root.cfg.History.Backend)),
				zap.String("corpus", root.cfg.History.Corpus))
			fmt.Fprintln(cmd.OutOrStdout(), "history reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}

func newHistoryAddCmd(root *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Record a post published outside autopost",
		Long: `Records text as if it had been accepted, so later drafts are compared
against it. A duplicate of existing history is refused unless --force is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			checker, err := root.checker()
			if err != nil {
				return err
			}
			idx, err := root.openHistory(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = idx.Close() }()

			candidate := checker.Prepare(args[0])
			if candidate.Empty() {
				return withExit(ExitConfig, fmt.Errorf("text has no letters or digits to record"))
			}
			decision := checker.CheckCandidate(candidate, idx.Entries())
			printer(cmd).PrintDecision(candidate, decision)
			if decision.Duplicate && !force {
				return withExit(ExitGeneration, fmt.Errorf("text duplicates history entry %d; use --force to record it anyway", decision.MatchIndex))
			}

			if err := idx.Append(ctx, candidate.Entry()); err != nil {
				return withExit(ExitOutput, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s (%d entries)\n", candidate.Fingerprint, idx.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Record even if the text duplicates history")
	return cmd
}
