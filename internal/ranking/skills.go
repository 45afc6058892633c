// Package ranking scores candidates against a job requirement and ranks the results.
package ranking

import (
	"fmt"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// Skill score weights
const (
	requiredSkillWeight  = 0.7
	preferredSkillWeight = 0.3
)

// ScoreSkills scores the overlap between candidate skills and the required and preferred skills.
// An empty required or preferred list counts as fully matched.
func ScoreSkills(candidate *types.CandidateProfile, req *types.JobRequirement) types.FactorScore {
	candidateSkills := make(map[string]bool, len(candidate.Skills))
	for _, skill := range candidate.Skills {
		candidateSkills[skill] = true
	}

	matchedRequired, missingRequired := partitionSkills(req.RequiredSkills, candidateSkills)
	matchedPreferred, _ := partitionSkills(req.PreferredSkills, candidateSkills)

	requiredRate := matchRate(len(matchedRequired), len(req.RequiredSkills))
	preferredRate := matchRate(len(matchedPreferred), len(req.PreferredSkills))

	reasons := make([]string, 0, 3)
	if len(matchedRequired) > 0 {
		reasons = append(reasons, fmt.Sprintf("Matches required skills: %s", strings.Join(matchedRequired, ", ")))
	}
	if requiredRate < 1.0 {
		reasons = append(reasons, fmt.Sprintf("Missing required skills: %s", strings.Join(missingRequired, ", ")))
	}
	if len(matchedPreferred) > 0 {
		reasons = append(reasons, fmt.Sprintf("Matches preferred skills: %s", strings.Join(matchedPreferred, ", ")))
	}

	return types.FactorScore{
		Value:   clamp01(requiredSkillWeight*requiredRate + preferredSkillWeight*preferredRate),
		Reasons: reasons,
	}
}

// partitionSkills splits wanted skills into those the candidate has and those they lack, keeping requirement order.
func partitionSkills(wanted []string, have map[string]bool) (matched, missing []string) {
	for _, skill := range wanted {
		if have[skill] {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	return matched, missing
}

func matchRate(matched, total int) float64 {
	if total == 0 {
		return 1.0
	}
	return float64(matched) / float64(total)
}
