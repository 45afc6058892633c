package ranking

import (
	"testing"

	"github.com/jonathan/candidate-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioCandidate and scenarioRequirement reproduce the worked example:
// skill 0.65, experience 0.88, education 0.5, context 0.0.
func scenarioCandidate() *types.CandidateProfile {
	return &types.CandidateProfile{
		ID:                "cand-1",
		Name:              "Hanako Yamada",
		Skills:            []string{"python", "java", "aws"},
		YearsOfExperience: 7,
		EducationLevel:    2,
		EducationText:     "Associate degree",
		PreferredLocation: "Tokyo",
		Status:            types.CandidateStatusActive,
	}
}

func scenarioRequirement() *types.JobRequirement {
	return &types.JobRequirement{
		JobID:              "job-1",
		RequiredSkills:     []string{"python", "sql"},
		PreferredSkills:    []string{"aws"},
		MinExperienceYears: 3,
		MaxExperienceYears: 5,
		EducationFloor:     3,
		EducationText:      "Bachelor's degree",
		Location:           "Osaka",
		EmploymentType:     "full-time",
	}
}

func TestScoreCandidate_Scenario(t *testing.T) {
	result := ScoreCandidate(scenarioCandidate(), scenarioRequirement())

	assert.Equal(t, "cand-1", result.CandidateID)
	assert.Equal(t, "Hanako Yamada", result.CandidateName)
	assert.InDelta(t, 0.555, result.MatchScore, 1e-9)
	assert.Equal(t, 0, result.MatchRank)
	assert.Equal(t, types.OutcomeRule, result.Source)
	assert.Greater(t, result.MatchScore, DefaultThreshold)
}

func TestScoreCandidate_ReasonOrder(t *testing.T) {
	result := ScoreCandidate(scenarioCandidate(), scenarioRequirement())

	require.Len(t, result.MatchReasons, 6)
	assert.Contains(t, result.MatchReasons[0], "required skills: python")
	assert.Contains(t, result.MatchReasons[1], "Missing required skills: sql")
	assert.Contains(t, result.MatchReasons[2], "preferred skills: aws")
	assert.Contains(t, result.MatchReasons[3], "exceeds the upper bound")
	assert.Contains(t, result.MatchReasons[4], "Education")
	assert.Contains(t, result.MatchReasons[5], "Location does not match")
}

func TestScoreCandidate_Deterministic(t *testing.T) {
	first := ScoreCandidate(scenarioCandidate(), scenarioRequirement())
	for i := 0; i < 20; i++ {
		again := ScoreCandidate(scenarioCandidate(), scenarioRequirement())
		assert.Equal(t, first.MatchScore, again.MatchScore)
		assert.Equal(t, first.MatchReasons, again.MatchReasons)
	}
}

func TestScoreBreakdown_Factors(t *testing.T) {
	b := ScoreBreakdown(scenarioCandidate(), scenarioRequirement())

	assert.InDelta(t, 0.65, b.Skill.Value, 1e-9)
	assert.InDelta(t, 0.88, b.Experience.Value, 1e-9)
	assert.Equal(t, 0.5, b.Education.Value)
	assert.Equal(t, 0.0, b.Context.Value)
}

func TestBreakdown_TotalClamped(t *testing.T) {
	b := Breakdown{
		Skill:      types.FactorScore{Value: 1},
		Experience: types.FactorScore{Value: 1},
		Education:  types.FactorScore{Value: 1},
		Context:    types.FactorScore{Value: 1},
	}
	assert.InDelta(t, 1.0, b.Total(), 1e-9)
	assert.LessOrEqual(t, b.Total(), 1.0)

	assert.Equal(t, 0.0, Breakdown{}.Total())
}

func TestScoreCandidate_PerfectMatch(t *testing.T) {
	candidate := &types.CandidateProfile{
		ID:                      "cand-2",
		Skills:                  []string{"go"},
		YearsOfExperience:       4,
		EducationLevel:          4,
		PreferredLocation:       "Remote",
		PreferredEmploymentType: "contract",
	}
	req := &types.JobRequirement{
		RequiredSkills:     []string{"go"},
		MinExperienceYears: 2,
		MaxExperienceYears: 6,
		EducationFloor:     3,
		Location:           "remote",
		EmploymentType:     "Contract",
	}

	result := ScoreCandidate(candidate, req)
	assert.InDelta(t, 1.0, result.MatchScore, 1e-9)
}
