package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/autopost/internal/novelty"
	"github.com/jonathan/autopost/internal/persona"
	"github.com/jonathan/autopost/internal/types"
	"github.com/jonathan/autopost/internal/validation"
)

type checkOptions struct {
	file     string
	jobs     int
	validate bool
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [text...]",
		Short: "Check texts against history without generating",
		Long: `Compares each text with every history entry and prints the verdict.
History is not modified. With --validate each text is also checked against
the persona's length, emoji and avoided-topic limits. Exits with code 3 if any
text is a duplicate or invalid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read additional texts from a file, one per line")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 4, "Texts checked in parallel")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "Also validate texts against the persona constraints")
	return cmd
}

func runCheck(cmd *cobra.Command, root *rootOptions, opts *checkOptions, args []string) error {
	ctx := cmd.Context()

	texts := append([]string(nil), args...)
	if opts.file != "" {
		lines, err := readLines(opts.file)
		if err != nil {
			return withExit(ExitConfig, err)
		}
		texts = append(texts, lines...)
	}
	if len(texts) == 0 {
		return withExit(ExitConfig, fmt.Errorf("no texts to check; pass them as arguments or with --file"))
	}
	if opts.jobs < 1 {
		return withExit(ExitConfig, fmt.Errorf("--jobs must be at least 1, got %d", opts.jobs))
	}

	var p *types.Persona
	if opts.validate {
		loaded, err := persona.Load(root.cfg.PersonaPath)
		if err != nil {
			return withExit(ExitConfig, err)
		}
		p = loaded
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
	entries := idx.Entries()

	candidates := make([]novelty.Candidate, len(texts))
	decisions := make([]novelty.Decision, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs)
	for i, text := range texts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			candidates[i], decisions[i] = checker.CheckText(text, entries)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return withExit(ExitInterrupted, err)
	}

	out := printer(cmd)
	duplicates, invalid := 0, 0
	for i, text := range texts {
		out.PrintDecision(candidates[i], decisions[i])
		if decisions[i].Duplicate {
			duplicates++
		}
		if p != nil {
			violations := validation.CheckCandidate(text, p)
			out.PrintViolations(violations)
			if (&types.Violations{Violations: violations}).HasErrors() {
				invalid++
			}
		}
	}

	root.logger.Debug("check finished",
		zap.Int("texts", len(texts)),
		zap.Int("duplicates", duplicates),
		zap.Int("invalid", invalid),
		zap.Int("history", len(entries)))

	switch {
	case duplicates > 0:
		return withExit(ExitGeneration, fmt.Errorf("%d of %d texts duplicate history", duplicates, len(texts)))
	case invalid > 0:
		return withExit(ExitGeneration, fmt.Errorf("%d of %d texts violate persona constraints", invalid, len(texts)))
	}
	return nil
}

// readLines returns the non-blank lines of path.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texts file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read texts file: %w", err)
	}
	return lines, nil
}
