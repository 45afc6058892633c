//go:build integration

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-matcher/internal/apperrors"
	"github.com/jonathan/candidate-matcher/internal/types"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	require.NoError(t, err, "failed to connect to test database")
	require.NoError(t, db.Migrate(ctx))

	t.Cleanup(db.Close)
	return db
}

// testPrefix scopes rows created by one test so cleanup never touches other data
func testPrefix() string {
	return "it-" + uuid.New().String()[:8] + "-"
}

func cleanupPrefix(t *testing.T, db *DB, prefix string) {
	t.Helper()
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = db.pool.Exec(ctx, "DELETE FROM match_runs WHERE job_id LIKE $1", prefix+"%")
		_, _ = db.pool.Exec(ctx, "DELETE FROM candidates WHERE id LIKE $1", prefix+"%")
		_, _ = db.pool.Exec(ctx, "DELETE FROM jobs WHERE id LIKE $1", prefix+"%")
	})
}

func TestIntegration_Jobs(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	prefix := testPrefix()
	cleanupPrefix(t, db, prefix)

	minYears := 3.0
	job := &types.JobRecord{
		ID:              prefix + "job",
		Title:           "Data Engineer",
		RequiredSkills:  []types.Skill{{Name: "Python"}, {Name: "SQL"}},
		PreferredSkills: []types.Skill{{Name: "Airflow"}},
		MinExperience:   &minYears,
		EducationLevel:  "Bachelor's degree",
		Location:        "Tokyo",
		Type:            "full-time",
		CompanyValues:   []string{"ownership"},
	}

	id, err := db.UpsertJob(ctx, job)
	require.NoError(t, err)

	got, err := db.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, job.RequiredSkills, got.RequiredSkills)
	assert.Equal(t, 3.0, *got.MinExperience)
	assert.Nil(t, got.MaxExperience)
	assert.Equal(t, []string{"ownership"}, got.CompanyValues)

	_, err = db.GetJob(ctx, prefix+"missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeNotFound))
}

func TestIntegration_ListCandidates_Paging(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	prefix := testPrefix()
	cleanupPrefix(t, db, prefix)

	for _, suffix := range []string{"a", "b", "c", "d", "e"} {
		status := types.CandidateStatusActive
		if suffix == "c" {
			status = "inactive"
		}
		_, err := db.UpsertCandidate(ctx, &types.CandidateRecord{
			ID:        prefix + suffix,
			FirstName: "Candidate",
			LastName:  suffix,
			Skills:    []types.Skill{{Name: "Go"}},
			Status:    status,
		})
		require.NoError(t, err)
	}

	var ids []string
	query := types.CandidateQuery{Status: types.CandidateStatusActive, PageSize: 2, PageToken: prefix}
	for {
		page, err := db.ListCandidates(ctx, query)
		require.NoError(t, err)
		for _, c := range page.Candidates {
			if len(c.ID) > len(prefix) && c.ID[:len(prefix)] == prefix {
				ids = append(ids, c.ID)
			}
		}
		if page.NextToken == "" {
			break
		}
		query.PageToken = page.NextToken
	}

	assert.Equal(t, []string{prefix + "a", prefix + "b", prefix + "d", prefix + "e"}, ids)
}

func TestIntegration_MatchRuns(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	prefix := testPrefix()
	cleanupPrefix(t, db, prefix)

	jobID := prefix + "job"
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	run := &types.MatchRunRecord{
		ID:        jobID + "-" + ts.Format("2006-01-02T15:04:05.000Z07:00"),
		JobID:     jobID,
		Timestamp: ts,
		Strategy:  types.OutcomeRule,
		MatchedCandidates: []types.MatchResult{
			{CandidateID: prefix + "c1", CandidateName: "A B", MatchScore: 0.9, MatchRank: 1, MatchReasons: []string{"x"}, Source: types.OutcomeRule},
			{CandidateID: prefix + "c2", CandidateName: "C D", MatchScore: 0.6, MatchRank: 2, MatchReasons: []string{"y"}, Source: types.OutcomeRule},
		},
		MatchCount: 2,
	}
	require.NoError(t, db.SaveMatchRun(ctx, run))

	got, err := db.GetMatchRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, got)

	runs, err := db.ListMatchRunsByJob(ctx, jobID, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)

	history, err := db.ListMatchesForCandidate(ctx, prefix+"c2", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].MatchRank)
	assert.Equal(t, jobID, history[0].JobID)

	err = db.SaveMatchRun(ctx, run)
	assert.Error(t, err, "duplicate run id must fail")

	_, err = db.GetMatchRun(ctx, prefix+"missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeNotFound))
}
