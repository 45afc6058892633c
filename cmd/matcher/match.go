package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-matcher/internal/matching"
	"github.com/jonathan/candidate-matcher/internal/observability"
	"github.com/jonathan/candidate-matcher/internal/parsing"
)

var (
	matchJobID   string
	matchOutput  string
	matchDryRun  bool
	matchFormat  string
	matchVerbose bool
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score and rank candidates for one job",
	Long:  "Runs one match pass for a job and prints the ranked result as JSON. With --dry-run the run is neither persisted nor announced.",
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchJobID, "job", "j", "", "Job ID to match (required)")
	matchCmd.Flags().StringVarP(&matchOutput, "out", "o", "", "Write the result to this file instead of stdout")
	matchCmd.Flags().BoolVar(&matchDryRun, "dry-run", false, "Score without saving the run or publishing events")
	matchCmd.Flags().StringVarP(&matchFormat, "format", "f", "json", "Output format: json or text")
	matchCmd.Flags().BoolVarP(&matchVerbose, "verbose", "v", false, "Print progress to stderr")

	if err := matchCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	if matchFormat != "json" && matchFormat != "text" {
		return fmt.Errorf("unknown format %q (want json or text)", matchFormat)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	rt, err := wire(ctx, cfg, log, wireOptions{persist: !matchDryRun})
	if err != nil {
		return err
	}
	defer rt.Close()

	var progress matching.ProgressCallback
	if matchVerbose {
		progress = observability.NewPrinter(cmd.ErrOrStderr()).PrintProgress
	}

	response, err := rt.engine.MatchWithProgress(ctx, matchJobID, progress)
	if err != nil {
		return err
	}

	if matchFormat == "text" && matchOutput == "" {
		printer := observability.NewPrinter(cmd.OutOrStdout())
		if job, err := rt.jobs.GetJob(ctx, response.JobID); err == nil && job != nil {
			req := parsing.NormalizeRequirement(*job)
			printer.PrintRequirement(&req)
		}
		printer.PrintMatchResponse(response)
		return nil
	}

	return writeJSON(cmd.OutOrStdout(), matchOutput, response)
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty.
func writeJSON(stdout io.Writer, path string, v any) error {
	jsonOutput, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result to JSON: %w", err)
	}

	if path == "" {
		_, err := fmt.Fprintln(stdout, string(jsonOutput))
		return err
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	if err := os.WriteFile(path, jsonOutput, 0o644); err != nil {
		return fmt.Errorf("failed to write result to %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "Wrote match result to %s\n", path)
	return nil
}
