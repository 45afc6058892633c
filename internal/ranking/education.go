package ranking

import (
	"fmt"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// Education scores by how far the candidate falls short of the floor
const (
	educationOneLevelShort = 0.5
	educationFarBelowFloor = 0.2
)

// ScoreEducation compares the candidate's education level with the job's floor.
func ScoreEducation(candidate *types.CandidateProfile, req *types.JobRequirement) types.FactorScore {
	if req.EducationFloor <= 0 {
		return types.FactorScore{
			Value:   1.0,
			Reasons: []string{"No specific education requirement"},
		}
	}

	candidateText := describeEducation(candidate.EducationText, candidate.EducationLevel)
	requiredText := describeEducation(req.EducationText, req.EducationFloor)

	if candidate.EducationLevel >= req.EducationFloor {
		return types.FactorScore{
			Value:   1.0,
			Reasons: []string{fmt.Sprintf("Education (%s) meets the requirement (%s)", candidateText, requiredText)},
		}
	}

	if req.EducationFloor-candidate.EducationLevel == 1 {
		return types.FactorScore{
			Value:   educationOneLevelShort,
			Reasons: []string{fmt.Sprintf("Education (%s) is slightly below the requirement (%s)", candidateText, requiredText)},
		}
	}

	return types.FactorScore{
		Value:   educationFarBelowFloor,
		Reasons: []string{fmt.Sprintf("Education (%s) is below the requirement (%s)", candidateText, requiredText)},
	}
}

var educationLevelNames = map[int]string{
	0: "none",
	1: "secondary",
	2: "associate",
	3: "bachelor",
	4: "master",
	5: "doctorate",
}

// describeEducation prefers the original text and falls back to the level name
func describeEducation(text string, level int) string {
	if text != "" {
		return text
	}
	if name, ok := educationLevelNames[level]; ok {
		return name
	}
	return "unknown"
}
