package ranking

import (
	"fmt"
	"strconv"

	"github.com/jonathan/candidate-matcher/internal/types"
)

const (
	// overshootFloor is the lowest score a candidate above the upper bound can get
	overshootFloor = 0.7
	// shortfallCredit is the best score for a candidate just below the minimum
	shortfallCredit = 0.6
	// shortfallWindow is how many years below the minimum still earn partial credit
	shortfallWindow = 3.0
)

// ScoreExperience scores years of experience against the requirement's bounds.
//
// Within bounds scores 1.0. Above a bounded maximum the score decays linearly from
// 1.0 toward overshootFloor as experience approaches twice the maximum. Below the
// minimum, a gap of up to shortfallWindow years earns linear partial credit.
func ScoreExperience(candidate *types.CandidateProfile, req *types.JobRequirement) types.FactorScore {
	years := candidate.YearsOfExperience
	lo := req.MinExperienceYears
	hi := req.MaxExperienceYears

	if years >= lo {
		if !req.HasUpperBound() {
			return types.FactorScore{
				Value:   1.0,
				Reasons: []string{fmt.Sprintf("%s years of experience meets the minimum of %s years", formatYears(years), formatYears(lo))},
			}
		}
		if years <= hi {
			return types.FactorScore{
				Value: 1.0,
				Reasons: []string{fmt.Sprintf("%s years of experience is within the required range (%s-%s years)",
					formatYears(years), formatYears(lo), formatYears(hi))},
			}
		}

		overshoot := hi*2 - years
		ratio := clamp01(overshoot / hi)
		return types.FactorScore{
			Value: overshootFloor + (1-overshootFloor)*ratio,
			Reasons: []string{fmt.Sprintf("%s years of experience exceeds the upper bound of %s years",
				formatYears(years), formatYears(hi))},
		}
	}

	gap := lo - years
	if gap <= shortfallWindow {
		return types.FactorScore{
			Value: shortfallCredit * (1 - gap/shortfallWindow),
			Reasons: []string{fmt.Sprintf("%s years of experience is slightly below the minimum of %s years",
				formatYears(years), formatYears(lo))},
		}
	}

	return types.FactorScore{
		Value: 0,
		Reasons: []string{fmt.Sprintf("%s years of experience is far below the minimum of %s years",
			formatYears(years), formatYears(lo))},
	}
}

func formatYears(years float64) string {
	return strconv.FormatFloat(years, 'f', -1, 64)
}
