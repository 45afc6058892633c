// Package observability provides human-readable output for the matcher CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/candidate-matcher/internal/matching"
	"github.com/jonathan/candidate-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// maxReasonsToShow caps the reasons listed per candidate
	maxReasonsToShow = 3
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRequirement outputs a summary of a normalized job requirement.
func (p *Printer) PrintRequirement(req *types.JobRequirement) {
	if req == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job:         %s\n", req.JobID))
	if req.HasUpperBound() {
		sb.WriteString(fmt.Sprintf("Experience:  %.1f-%.1f years\n", req.MinExperienceYears, req.MaxExperienceYears))
	} else {
		sb.WriteString(fmt.Sprintf("Experience:  %.1f+ years\n", req.MinExperienceYears))
	}
	if req.EducationText != "" {
		sb.WriteString(fmt.Sprintf("Education:   %s\n", req.EducationText))
	}
	writeList(&sb, "Required skills", req.RequiredSkills)
	writeList(&sb, "Preferred skills", req.PreferredSkills)

	p.printBox("JOB REQUIREMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatchResponse outputs the ranked candidates of a run with their top reasons.
func (p *Printer) PrintMatchResponse(resp *types.MatchResponse) {
	if resp == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", resp.RunID))
	sb.WriteString(fmt.Sprintf("Matches:  %d (showing %d)\n", resp.MatchCount, len(resp.MatchedCandidates)))
	if !resp.Persisted {
		sb.WriteString("Warning:  run was not saved\n")
	}

	for _, m := range resp.MatchedCandidates {
		sb.WriteString("\n")
		name := m.CandidateName
		if name == "" {
			name = m.CandidateID
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", m.MatchRank, name))
		sb.WriteString(fmt.Sprintf("    Score: %.2f (%s)\n", m.MatchScore, m.Source))

		reasons := m.MatchReasons
		for j := 0; j < min(len(reasons), maxReasonsToShow); j++ {
			sb.WriteString(fmt.Sprintf("    • %s\n", reasons[j]))
		}
		if len(reasons) > maxReasonsToShow {
			sb.WriteString(fmt.Sprintf("    ... and %d more\n", len(reasons)-maxReasonsToShow))
		}
	}

	if len(resp.MatchedCandidates) == 0 {
		sb.WriteString("\nNo candidate scored above the threshold\n")
	}

	p.printBox("MATCHED CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProgress outputs a single progress line
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) PrintProgress(event matching.ProgressEvent) {
	fmt.Fprintf(p.out, "▸ %-12s %s (%d)\n", event.Step, event.Message, event.Count)
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n%s:\n", label))
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// truncate shortens s to at most width runes, marking the cut with "..."
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// pad right-pads s with spaces to width runes
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
