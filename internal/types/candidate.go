// Package types provides type definitions for structured data used throughout the candidate-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// CandidateStatusActive marks a candidate as eligible for matching
const CandidateStatusActive = "active"

// CandidateRecord is a raw candidate as held by the candidate store
type CandidateRecord struct {
	ID                  string  `json:"id"`
	FirstName           string  `json:"first_name,omitempty"`
	LastName            string  `json:"last_name,omitempty"`
	Skills              []Skill `json:"skills,omitempty"`
	YearsOfExperience   float64 `json:"years_of_experience,omitempty"`
	Education           string  `json:"education,omitempty"` // free text
	Location            string  `json:"location,omitempty"`
	PreferredJobType    string  `json:"preferred_job_type,omitempty"`
	PreferredDepartment string  `json:"preferred_department,omitempty"`
	Status              string  `json:"status"`
}

// CandidateProfile is the read-only view of a candidate used by the scorers
type CandidateProfile struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name"`
	Skills                  []string `json:"skills"` // lower-cased
	YearsOfExperience       float64  `json:"years_of_experience"`
	EducationLevel          int      `json:"education_level"` // 0-5
	EducationText           string   `json:"education_text,omitempty"`
	PreferredLocation       string   `json:"preferred_location,omitempty"`
	PreferredEmploymentType string   `json:"preferred_employment_type,omitempty"`
	PreferredDepartment     string   `json:"preferred_department,omitempty"`
	Status                  string   `json:"status"`
}

// IsEligible reports whether the candidate may be scored
func (c *CandidateProfile) IsEligible() bool {
	return c.Status == CandidateStatusActive
}

// CandidateQuery selects one page of candidates from a candidate store
type CandidateQuery struct {
	Status    string // empty means any status
	PageToken string // empty for the first page
	PageSize  int
}

// CandidatePage is one page of candidates. An empty NextToken marks the last page.
type CandidatePage struct {
	Candidates []CandidateRecord
	NextToken  string
}
