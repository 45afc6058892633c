package parsing

import "strings"

// Education levels, ordered by specificity
const (
	EducationNone      = 0
	EducationSecondary = 1
	EducationAssociate = 2
	EducationBachelor  = 3
	EducationMaster    = 4
	EducationDoctorate = 5
)

// educationVocabulary is checked top to bottom; the first level with a matching keyword wins
var educationVocabulary = []struct {
	level    int
	keywords []string
}{
	{EducationDoctorate, []string{"phd", "ph.d", "doctor", "博士"}},
	{EducationMaster, []string{"master", "mba", "修士"}},
	{EducationBachelor, []string{"bachelor", "undergraduate", "university", "学士", "大学"}},
	{EducationAssociate, []string{"associate", "vocational", "短大", "専門"}},
	{EducationSecondary, []string{"high school", "secondary", "高校"}},
}

// EducationLevel maps free-text education to an ordinal level (0 = unknown/none, 5 = doctorate).
func EducationLevel(education string) int {
	text := strings.ToLower(strings.TrimSpace(education))
	if text == "" {
		return EducationNone
	}

	for _, entry := range educationVocabulary {
		for _, keyword := range entry.keywords {
			if strings.Contains(text, keyword) {
				return entry.level
			}
		}
	}

	return EducationNone
}
