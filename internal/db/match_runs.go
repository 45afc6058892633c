package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/candidate-matcher/internal/apperrors"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// SaveMatchRun stores a run and its per-candidate rows in one transaction.
func (db *DB) SaveMatchRun(ctx context.Context, run *types.MatchRunRecord) error {
	matchedJSON, err := json.Marshal(run.MatchedCandidates)
	if err != nil {
		return fmt.Errorf("failed to marshal matched candidates: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO match_runs (id, job_id, strategy, match_count, matched_candidates, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.JobID, string(run.Strategy), run.MatchCount, matchedJSON, run.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match run: %w", err)
	}

	if len(run.MatchedCandidates) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"match_run_candidates"},
			[]string{"run_id", "candidate_id", "match_rank", "match_score", "source"},
			pgx.CopyFromRows(candidateRows(run)),
		)
		if err != nil {
			return fmt.Errorf("failed to insert match run candidates: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit match run: %w", err)
	}
	return nil
}

// candidateRows flattens a run into match_run_candidates rows
func candidateRows(run *types.MatchRunRecord) [][]any {
	rows := make([][]any, 0, len(run.MatchedCandidates))
	for _, m := range run.MatchedCandidates {
		rows = append(rows, []any{run.ID, m.CandidateID, m.MatchRank, m.MatchScore, string(m.Source)})
	}
	return rows
}

// GetMatchRun retrieves a run with its full ranked list
func (db *DB) GetMatchRun(ctx context.Context, id string) (*types.MatchRunRecord, error) {
	run, err := scanMatchRun(db.pool.QueryRow(ctx,
		`SELECT id, job_id, strategy, match_count, matched_candidates, created_at
		 FROM match_runs WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(fmt.Sprintf("match run %s not found", id), nil)
		}
		return nil, apperrors.StoreUnavailable("failed to get match run", err)
	}
	return run, nil
}

// ListMatchRunsByJob returns a job's runs, newest first
func (db *DB) ListMatchRunsByJob(ctx context.Context, jobID string, limit int) ([]types.MatchRunRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, job_id, strategy, match_count, matched_candidates, created_at
		 FROM match_runs WHERE job_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		jobID, clampLimit(limit),
	)
	if err != nil {
		return nil, apperrors.StoreUnavailable("failed to list match runs", err)
	}
	defer rows.Close()

	runs := []types.MatchRunRecord{}
	for rows.Next() {
		run, err := scanMatchRun(rows)
		if err != nil {
			return nil, apperrors.StoreUnavailable("failed to scan match run", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreUnavailable("failed to iterate match runs", err)
	}
	return runs, nil
}

// ListMatchesForCandidate returns the runs a candidate was ranked in, newest first
func (db *DB) ListMatchesForCandidate(ctx context.Context, candidateID string, limit int) ([]types.CandidateMatch, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT r.id, r.job_id, r.created_at, c.match_score, c.match_rank, c.candidate_id
		 FROM match_run_candidates c
		 JOIN match_runs r ON r.id = c.run_id
		 WHERE c.candidate_id = $1
		 ORDER BY r.created_at DESC LIMIT $2`,
		candidateID, clampLimit(limit),
	)
	if err != nil {
		return nil, apperrors.StoreUnavailable("failed to list candidate matches", err)
	}
	defer rows.Close()

	matches := []types.CandidateMatch{}
	for rows.Next() {
		var m types.CandidateMatch
		if err := rows.Scan(&m.RunID, &m.JobID, &m.Timestamp, &m.MatchScore, &m.MatchRank, &m.CandidateID); err != nil {
			return nil, apperrors.StoreUnavailable("failed to scan candidate match", err)
		}
		m.Timestamp = m.Timestamp.UTC()
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreUnavailable("failed to iterate candidate matches", err)
	}
	return matches, nil
}

func scanMatchRun(row pgx.Row) (*types.MatchRunRecord, error) {
	var run types.MatchRunRecord
	var strategy string
	var matchedJSON []byte

	if err := row.Scan(&run.ID, &run.JobID, &strategy, &run.MatchCount, &matchedJSON, &run.Timestamp); err != nil {
		return nil, err
	}
	run.Strategy = types.ScoringOutcome(strategy)
	run.Timestamp = run.Timestamp.UTC()

	if err := json.Unmarshal(matchedJSON, &run.MatchedCandidates); err != nil {
		return nil, fmt.Errorf("failed to decode matched candidates: %w", err)
	}
	return &run, nil
}
