package ranking

import (
	"github.com/jonathan/candidate-matcher/internal/types"
)

// Factor weights for the rule-based score
const (
	skillWeight      = 0.40
	experienceWeight = 0.25
	educationWeight  = 0.15
	contextWeight    = 0.20
)

// Breakdown holds the four factor scores behind a rule-based match
type Breakdown struct {
	Skill      types.FactorScore `json:"skill"`
	Experience types.FactorScore `json:"experience"`
	Education  types.FactorScore `json:"education"`
	Context    types.FactorScore `json:"context"`
}

// Total returns the weighted sum of the factor scores, clamped to [0, 1].
func (b Breakdown) Total() float64 {
	total := skillWeight*b.Skill.Value +
		experienceWeight*b.Experience.Value +
		educationWeight*b.Education.Value +
		contextWeight*b.Context.Value
	return clamp01(total)
}

// Reasons concatenates factor reasons in skill, experience, education, context order.
func (b Breakdown) Reasons() []string {
	reasons := make([]string, 0, len(b.Skill.Reasons)+len(b.Experience.Reasons)+len(b.Education.Reasons)+len(b.Context.Reasons))
	reasons = append(reasons, b.Skill.Reasons...)
	reasons = append(reasons, b.Experience.Reasons...)
	reasons = append(reasons, b.Education.Reasons...)
	reasons = append(reasons, b.Context.Reasons...)
	return reasons
}

// ScoreBreakdown runs the four factor scorers.
func ScoreBreakdown(candidate *types.CandidateProfile, req *types.JobRequirement) Breakdown {
	return Breakdown{
		Skill:      ScoreSkills(candidate, req),
		Experience: ScoreExperience(candidate, req),
		Education:  ScoreEducation(candidate, req),
		Context:    ScoreContext(candidate, req),
	}
}

// ScoreCandidate is the rule-based aggregator. It is pure: the same inputs always
// produce the same score and reasons. MatchRank is left at zero for the ranker.
func ScoreCandidate(candidate *types.CandidateProfile, req *types.JobRequirement) types.MatchResult {
	breakdown := ScoreBreakdown(candidate, req)

	return types.MatchResult{
		CandidateID:   candidate.ID,
		CandidateName: candidate.Name,
		MatchScore:    breakdown.Total(),
		MatchReasons:  breakdown.Reasons(),
		Source:        types.OutcomeRule,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
