package parsing

import (
	"strings"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// NormalizeRequirement derives the canonical requirement set from a raw job.
// Missing lists become empty, a missing minimum becomes 0 and a missing or
// non-positive maximum becomes types.UnboundedExperience.
func NormalizeRequirement(job types.JobRecord) types.JobRequirement {
	req := types.JobRequirement{
		JobID:              job.ID,
		RequiredSkills:     NormalizeSkills(skillNames(job.RequiredSkills)),
		PreferredSkills:    NormalizeSkills(skillNames(job.PreferredSkills)),
		MaxExperienceYears: types.UnboundedExperience,
		EducationFloor:     EducationLevel(job.EducationLevel),
		EducationText:      strings.TrimSpace(job.EducationLevel),
		Location:           strings.TrimSpace(job.Location),
		EmploymentType:     strings.TrimSpace(job.Type),
		Department:         strings.TrimSpace(job.Department),
		CompanyValues:      normalizeValues(job.CompanyValues),
	}

	if job.MinExperience != nil && *job.MinExperience > 0 {
		req.MinExperienceYears = *job.MinExperience
	}
	if job.MaxExperience != nil && *job.MaxExperience > 0 && *job.MaxExperience < types.UnboundedExperience {
		req.MaxExperienceYears = *job.MaxExperience
	}

	return req
}

// NormalizeCandidate derives the scorer view of a raw candidate.
func NormalizeCandidate(c types.CandidateRecord) types.CandidateProfile {
	years := c.YearsOfExperience
	if years < 0 {
		years = 0
	}

	return types.CandidateProfile{
		ID:                      c.ID,
		Name:                    strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName)),
		Skills:                  NormalizeSkills(skillNames(c.Skills)),
		YearsOfExperience:       years,
		EducationLevel:          EducationLevel(c.Education),
		EducationText:           strings.TrimSpace(c.Education),
		PreferredLocation:       strings.TrimSpace(c.Location),
		PreferredEmploymentType: strings.TrimSpace(c.PreferredJobType),
		PreferredDepartment:     strings.TrimSpace(c.PreferredDepartment),
		Status:                  strings.ToLower(strings.TrimSpace(c.Status)),
	}
}

func skillNames(skills []types.Skill) []string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	return names
}

func normalizeValues(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}
