// Package types provides type definitions for structured data used throughout the candidate-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FactorScore is one scorer's normalized sub-score and the reasons behind it
type FactorScore struct {
	Value   float64  `json:"value"`
	Reasons []string `json:"reasons"`
}

// ScoringOutcome records which strategy produced a score
type ScoringOutcome string

const (
	// OutcomeML means the external inference endpoint produced the score
	OutcomeML ScoringOutcome = "ml"
	// OutcomeRule means the rule-based aggregator produced the score
	OutcomeRule ScoringOutcome = "rule"
)

// MatchResult is the score of one candidate against one job
type MatchResult struct {
	CandidateID   string         `json:"candidate_id"`
	CandidateName string         `json:"candidate_name"`
	MatchScore    float64        `json:"match_score"`
	MatchRank     int            `json:"match_rank"`
	MatchReasons  []string       `json:"match_reasons"`
	Source        ScoringOutcome `json:"source"`
}

// MatchRunRecord is the persisted outcome of one scoring run
type MatchRunRecord struct {
	ID                string         `json:"id"`
	JobID             string         `json:"job_id"`
	Timestamp         time.Time      `json:"timestamp"`
	Strategy          ScoringOutcome `json:"strategy"`
	MatchedCandidates []MatchResult  `json:"matched_candidates"`
	MatchCount        int            `json:"match_count"`
}

// MatchResponse is what callers of a match run receive
type MatchResponse struct {
	RunID             string        `json:"run_id"`
	JobID             string        `json:"job_id"`
	MatchedCandidates []MatchResult `json:"matched_candidates"` // top N only
	MatchCount        int           `json:"match_count"`        // full filtered count
	Timestamp         time.Time     `json:"timestamp"`
	Persisted         bool          `json:"persisted"`
}

// CandidateMatch is one entry of a candidate's matching history
type CandidateMatch struct {
	RunID       string    `json:"run_id"`
	JobID       string    `json:"job_id"`
	Timestamp   time.Time `json:"timestamp"`
	MatchScore  float64   `json:"match_score"`
	MatchRank   int       `json:"match_rank"`
	CandidateID string    `json:"candidate_id"`
}

// MatchRequest is the request body for starting a match run
type MatchRequest struct {
	JobID string `json:"job_id" validate:"required,max=128"`
}

// Validate trims the job ID and validates the request using the validator.
func (r *MatchRequest) Validate() error {
	r.JobID = strings.TrimSpace(r.JobID)
	validate := validator.New()
	return validate.Struct(r)
}
