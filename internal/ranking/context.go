package ranking

import (
	"fmt"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// neutralContextScore is used when neither side gives anything to compare
const neutralContextScore = 0.5

// contextFactor is one comparable attribute between a candidate's preferences and a job
type contextFactor struct {
	label     string
	candidate string
	job       string
}

// ScoreContext compares location, employment type and department. Only attributes present
// on both sides count; each exact (case-insensitive) match earns 1.0 and the score is the mean.
func ScoreContext(candidate *types.CandidateProfile, req *types.JobRequirement) types.FactorScore {
	factors := []contextFactor{
		{label: "Location", candidate: candidate.PreferredLocation, job: req.Location},
		{label: "Employment type", candidate: candidate.PreferredEmploymentType, job: req.EmploymentType},
		{label: "Department", candidate: candidate.PreferredDepartment, job: req.Department},
	}

	var reasons []string
	compared := 0
	matched := 0.0

	for _, f := range factors {
		if f.candidate == "" || f.job == "" {
			continue
		}
		compared++
		if strings.EqualFold(f.candidate, f.job) {
			matched += 1.0
			reasons = append(reasons, fmt.Sprintf("%s matches (%s)", f.label, f.job))
		} else {
			reasons = append(reasons, fmt.Sprintf("%s does not match (candidate prefers %s, job is %s)", f.label, f.candidate, f.job))
		}
	}

	if compared == 0 {
		return types.FactorScore{
			Value:   neutralContextScore,
			Reasons: []string{"Not enough location, employment type or department data to compare"},
		}
	}

	return types.FactorScore{
		Value:   matched / float64(compared),
		Reasons: reasons,
	}
}
