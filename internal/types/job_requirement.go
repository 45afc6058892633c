// Package types provides type definitions for structured data used throughout the candidate-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// UnboundedExperience is the MaxExperienceYears sentinel for jobs without an upper bound.
const UnboundedExperience = 99.0

// Skill is a named skill as stored on job and candidate records
type Skill struct {
	Name string `json:"name"`
}

// JobRecord is a raw job as held by the job store. Every field except ID is optional.
type JobRecord struct {
	ID              string   `json:"id"`
	Title           string   `json:"title,omitempty"`
	RequiredSkills  []Skill  `json:"required_skills,omitempty"`
	PreferredSkills []Skill  `json:"preferred_skills,omitempty"`
	MinExperience   *float64 `json:"min_experience,omitempty"`
	MaxExperience   *float64 `json:"max_experience,omitempty"`
	EducationLevel  string   `json:"education_level,omitempty"` // free text, e.g. "Bachelor's degree"
	Location        string   `json:"location,omitempty"`
	Type            string   `json:"type,omitempty"` // employment type, e.g. "full-time"
	Department      string   `json:"department,omitempty"`
	CompanyValues   []string `json:"company_values,omitempty"`
}

// JobRequirement is the canonical requirement set derived from a JobRecord.
// Skill names are already lower-cased and de-duplicated.
type JobRequirement struct {
	JobID              string   `json:"job_id"`
	RequiredSkills     []string `json:"required_skills"`
	PreferredSkills    []string `json:"preferred_skills"`
	MinExperienceYears float64  `json:"min_experience_years"`
	MaxExperienceYears float64  `json:"max_experience_years"` // UnboundedExperience when no upper bound
	EducationFloor     int      `json:"education_floor"`      // 0-5, 0 = no requirement
	EducationText      string   `json:"education_text,omitempty"`
	Location           string   `json:"location,omitempty"`
	EmploymentType     string   `json:"employment_type,omitempty"`
	Department         string   `json:"department,omitempty"`
	CompanyValues      []string `json:"company_values"`
}

// HasUpperBound reports whether the requirement caps years of experience.
func (r *JobRequirement) HasUpperBound() bool {
	return r.MaxExperienceYears < UnboundedExperience
}
