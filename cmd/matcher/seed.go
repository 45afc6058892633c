package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/logger"
	"github.com/jonathan/candidate-matcher/internal/schemas"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// SeedFile is the document accepted by the seed command
type SeedFile struct {
	Jobs       []types.JobRecord       `json:"jobs"`
	Candidates []types.CandidateRecord `json:"candidates"`
}

var seedInput string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load jobs and candidates from a JSON file",
	Long:  "Upserts the jobs and candidates in a seed file. Records without an id get a generated one, and cached copies of updated jobs are invalidated.",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedInput, "in", "i", "", "Path to the seed JSON file (required)")
	if err := seedCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	rootCmd.AddCommand(seedCmd)
}

// loadSeedFile reads and schema-checks a seed file
func loadSeedFile(path string) (*SeedFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	if err := schemas.Validate(schemas.SeedSchema, content); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}

	var seed SeedFile
	if err := json.Unmarshal(content, &seed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seed file: %w", err)
	}
	return &seed, nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	seed, err := loadSeedFile(seedInput)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	rt, err := wire(ctx, cfg, log, wireOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	for i := range seed.Jobs {
		id, err := rt.db.UpsertJob(ctx, &seed.Jobs[i])
		if err != nil {
			return err
		}
		if rt.cache != nil {
			if err := rt.cache.Invalidate(ctx, id); err != nil {
				log.Warn("failed to invalidate cached job", zap.String(logger.FieldJobID, id), zap.Error(err))
			}
		}
	}
	for i := range seed.Candidates {
		if _, err := rt.db.UpsertCandidate(ctx, &seed.Candidates[i]); err != nil {
			return err
		}
	}

	log.Info("seed loaded", zap.Int("jobs", len(seed.Jobs)), zap.Int("candidates", len(seed.Candidates)))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d jobs and %d candidates\n", len(seed.Jobs), len(seed.Candidates))
	return nil
}
