// Package inference provides the external match predictors consulted before the
// rule-based aggregator: an HTTP model endpoint, an LLM judge and a circuit breaker
// that can wrap either.
package inference

import (
	"context"
	"errors"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// DefaultConfidence is reported when a predictor omits its confidence
const DefaultConfidence = 0.8

// Predictor is an external scorer with a cheap availability probe
type Predictor interface {
	// Available reports whether the predictor is in service. It is called once per run.
	Available(ctx context.Context) (bool, error)
	// Predict scores one candidate from its feature vector.
	Predict(ctx context.Context, features Features) (*Prediction, error)
}

// Prediction is a predictor's verdict for one candidate
type Prediction struct {
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons"`
	Confidence float64  `json:"confidence"`
}

// Features is the fixed-shape numeric input sent to a predictor
type Features struct {
	CandidateExperience     float64 `json:"candidate_experience"`
	JobMinExperience        float64 `json:"job_min_experience"`
	JobMaxExperience        float64 `json:"job_max_experience"`
	CandidateEducationLevel int     `json:"candidate_education_level"`
	JobEducationLevel       int     `json:"job_education_level"`
	RequiredSkillsCount     int     `json:"required_skills_count"`
	PreferredSkillsCount    int     `json:"preferred_skills_count"`
	RequiredSkillsMatch     int     `json:"required_skills_match"`
	PreferredSkillsMatch    int     `json:"preferred_skills_match"`
	LocationMatch           int     `json:"location_match"` // 1 or 0
	JobTypeMatch            int     `json:"job_type_match"` // 1 or 0
}

// BuildFeatures derives the feature vector for a candidate against a requirement.
// Location and employment type count as matching only when both sides are present.
func BuildFeatures(candidate *types.CandidateProfile, req *types.JobRequirement) Features {
	owned := make(map[string]bool, len(candidate.Skills))
	for _, s := range candidate.Skills {
		owned[s] = true
	}

	return Features{
		CandidateExperience:     candidate.YearsOfExperience,
		JobMinExperience:        req.MinExperienceYears,
		JobMaxExperience:        req.MaxExperienceYears,
		CandidateEducationLevel: candidate.EducationLevel,
		JobEducationLevel:       req.EducationFloor,
		RequiredSkillsCount:     len(req.RequiredSkills),
		PreferredSkillsCount:    len(req.PreferredSkills),
		RequiredSkillsMatch:     countOwned(req.RequiredSkills, owned),
		PreferredSkillsMatch:    countOwned(req.PreferredSkills, owned),
		LocationMatch:           flag(sameText(candidate.PreferredLocation, req.Location)),
		JobTypeMatch:            flag(sameText(candidate.PreferredEmploymentType, req.EmploymentType)),
	}
}

// Vector returns the features in their wire order.
func (f Features) Vector() []float64 {
	return []float64{
		f.CandidateExperience,
		f.JobMinExperience,
		f.JobMaxExperience,
		float64(f.CandidateEducationLevel),
		float64(f.JobEducationLevel),
		float64(f.RequiredSkillsCount),
		float64(f.PreferredSkillsCount),
		float64(f.RequiredSkillsMatch),
		float64(f.PreferredSkillsMatch),
		float64(f.LocationMatch),
		float64(f.JobTypeMatch),
	}
}

var errNotInService = errors.New("predictor is not in service")

// Disabled is a Predictor that is never in service
type Disabled struct{}

func (Disabled) Available(context.Context) (bool, error) { return false, nil }

func (Disabled) Predict(context.Context, Features) (*Prediction, error) {
	return nil, errNotInService
}

// sanitize clamps score and confidence into [0, 1] and fills defaults.
func sanitize(p *Prediction) *Prediction {
	p.Score = clamp01(p.Score)
	if p.Confidence <= 0 {
		p.Confidence = DefaultConfidence
	}
	p.Confidence = clamp01(p.Confidence)
	if p.Reasons == nil {
		p.Reasons = []string{}
	}
	return p
}

func countOwned(skills []string, owned map[string]bool) int {
	n := 0
	for _, s := range skills {
		if owned[s] {
			n++
		}
	}
	return n
}

func sameText(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && b != "" && strings.EqualFold(a, b)
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
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
