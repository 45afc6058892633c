// Package parsing turns raw job and candidate records into the canonical forms the scorers consume.
package parsing

import (
	"strings"
)

// NormalizeSkillName trims and lower-cases a skill name. Variants such as "js" and
// "javascript" stay distinct skills.
func NormalizeSkillName(skillName string) string {
	return strings.ToLower(strings.TrimSpace(skillName))
}

// NormalizeSkills normalizes skill names, dropping blanks and duplicates while keeping first-seen order.
func NormalizeSkills(names []string) []string {
	normalized := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		skill := NormalizeSkillName(name)
		if skill == "" || seen[skill] {
			continue
		}
		seen[skill] = true
		normalized = append(normalized, skill)
	}

	return normalized
}
