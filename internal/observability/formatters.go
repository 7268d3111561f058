// Package observability provides formatted output for the CLI: boxed
// summaries of gate runs, similarity decisions and history contents.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"golang.org/x/text/width"

	"github.com/jonathan/autopost/internal/gate"
	"github.com/jonathan/autopost/internal/history"
	"github.com/jonathan/autopost/internal/novelty"
	"github.com/jonathan/autopost/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
)

// Printer handles formatted CLI output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// runeWidth is the number of terminal columns r occupies.
func runeWidth(r rune) int {
	if unicode.In(r, unicode.Mn, unicode.Me, unicode.Cf) {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

// displayWidth is the number of terminal columns s occupies.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

// truncate shortens s to at most n columns, marking the cut with "...".
func truncate(s string, n int) string {
	if displayWidth(s) <= n {
		return s
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := runeWidth(r)
		if used+w > n-3 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String() + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	inner := boxWidth - 4
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad right-pads s with spaces to n columns. fmt's width counts bytes, which
// misaligns multibyte and double-width text.
func pad(s string, n int) string {
	if gap := n - displayWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// verdict prints a coloured one-line verdict.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) verdict(c *color.Color, format string, a ...any) {
	c.Fprintf(p.out, format, a...)
	fmt.Fprintln(p.out)
}

// PrintResult outputs the outcome of a gate run.
func (p *Printer) PrintResult(result *gate.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:       %s\n", result.RunID))
	sb.WriteString(fmt.Sprintf("Attempts:  %d\n", result.Attempts))
	if result.Accepted() {
		sb.WriteString(fmt.Sprintf("Compared:  %d entries\n", result.Decision.Compared))
		if result.Decision.Compared > 0 {
			sb.WriteString(fmt.Sprintf("Closest:   jaccard %.2f, hamming %d\n", result.Decision.BestJaccard, result.Decision.MinHamming))
		}
		sb.WriteString(fmt.Sprintf("Print:     %s\n", result.Entry.Fingerprint))
	}

	if len(result.Rejections) > 0 {
		sb.WriteString("\nRejected:\n")
		for _, r := range result.Rejections {
			sb.WriteString(fmt.Sprintf("  #%d %s", r.Attempt, r.Reason))
			if r.Decision != nil {
				sb.WriteString(fmt.Sprintf(" (entry %d, jaccard %.2f, hamming %d)",
					r.Decision.MatchIndex, r.Decision.Match.Jaccard, r.Decision.Match.Hamming))
			}
			sb.WriteString("\n")
		}
	}

	p.printBox("NOVELTY GATE", strings.TrimSuffix(sb.String(), "\n"))

	if result.Accepted() {
		p.verdict(green, "✓ accepted: %s", result.Text)
		return
	}
	p.verdict(red, "✗ no novel post after %d attempts", result.Attempts)
}

// PrintDecision outputs the check of one text against history.
func (p *Printer) PrintDecision(candidate novelty.Candidate, decision novelty.Decision) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Text:        %s\n", candidate.Raw))
	sb.WriteString(fmt.Sprintf("Normalized:  %s\n", candidate.Normalized))
	sb.WriteString(fmt.Sprintf("Fingerprint: %s\n", candidate.Fingerprint))
	sb.WriteString(fmt.Sprintf("Compared:    %d entries", decision.Compared))
	if decision.Compared > 0 {
		sb.WriteString(fmt.Sprintf("\nBest:        jaccard %.2f, hamming %d", decision.BestJaccard, decision.MinHamming))
	}
	if decision.Duplicate {
		sb.WriteString(fmt.Sprintf("\nMatch:       #%d %s", decision.MatchIndex, decision.MatchText))
	}
	p.printBox("SIMILARITY CHECK", sb.String())

	switch {
	case decision.Duplicate:
		p.verdict(red, "✗ duplicate (%s)", decision.Reason)
	case decision.Reason == novelty.ReasonEmpty:
		p.verdict(yellow, "⚠ empty after normalization")
	default:
		p.verdict(green, "✓ novel")
	}
}

// PrintHistory outputs the most recent entries, newest last.
func (p *Printer) PrintHistory(entries []types.Entry, limit int) {
	if len(entries) == 0 {
		p.printBox("HISTORY", "(empty)")
		return
	}
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}

	var sb strings.Builder
	start := len(entries) - limit
	if start > 0 {
		sb.WriteString(fmt.Sprintf("... %d earlier entries\n", start))
	}
	for i := start; i < len(entries); i++ {
		sb.WriteString(fmt.Sprintf("%4d %s %s\n", i, entries[i].Fingerprint, truncate(entries[i].NormalizedText, 30)))
	}
	p.printBox(fmt.Sprintf("HISTORY (%d entries)", len(entries)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSummary outputs history statistics.
func (p *Printer) PrintSummary(s history.Summary) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Entries:               %d\n", s.Entries))
	sb.WriteString(fmt.Sprintf("Distinct fingerprints: %d\n", s.DistinctFingerprints))
	if s.Entries > 0 {
		sb.WriteString(fmt.Sprintf("Length (runes):        avg %.1f, min %d, max %d\n", s.AverageRunes, s.ShortestRunes, s.LongestRunes))
	}
	if s.ClosestPairHamming >= 0 {
		sb.WriteString(fmt.Sprintf("Closest pair hamming:  %d\n", s.ClosestPairHamming))
	}
	p.printBox("HISTORY STATS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintViolations outputs validation failures for a candidate.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintViolations(violations []types.Violation) {
	if len(violations) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %s │\n", pad("✅ NO VIOLATIONS FOUND", boxWidth-4))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d violations:\n\n", len(violations)))

	count := min(len(violations), maxItemsToShow)
	for i := 0; i < count; i++ {
		v := violations[i]
		sb.WriteString(fmt.Sprintf("⚠ %s\n", v.Type))
		sb.WriteString(fmt.Sprintf("  %s\n", truncate(v.Details, 45)))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(violations) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(violations)-maxItemsToShow))
	}

	p.printBox("CONSTRAINT VIOLATIONS", strings.TrimSuffix(sb.String(), "\n"))
}
