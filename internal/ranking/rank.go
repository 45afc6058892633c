package ranking

import (
	"sort"

	"github.com/jonathan/candidate-matcher/internal/types"
)

const (
	// DefaultThreshold is the score a result must exceed to be kept
	DefaultThreshold = 0.30
	// DefaultTopN is how many ranked results are returned to callers
	DefaultTopN = 10
)

// Rank drops results scoring at or below threshold, sorts the rest by score
// descending and assigns dense 1-based ranks. Ties keep their input order, so
// callers must pass results in original candidate order. The input slice is not modified.
func Rank(results []types.MatchResult, threshold float64) []types.MatchResult {
	ranked := make([]types.MatchResult, 0, len(results))
	for _, r := range results {
		if r.MatchScore > threshold {
			ranked = append(ranked, r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})

	for i := range ranked {
		ranked[i].MatchRank = i + 1
	}

	return ranked
}

// Top returns at most n leading results. A non-positive n returns all of them.
func Top(ranked []types.MatchResult, n int) []types.MatchResult {
	if n <= 0 || len(ranked) <= n {
		return ranked
	}
	return ranked[:n]
}
