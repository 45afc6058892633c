// Package matching runs a scoring pass for one job: it loads the requirement and the
// eligible candidate pool, scores every candidate through the inference selector,
// ranks the results and publishes the run.
package matching

import (
	"context"
	"fmt"

	"github.com/jonathan/candidate-matcher/internal/apperrors"
	"github.com/jonathan/candidate-matcher/internal/parsing"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// DefaultPageSize is the candidate page size requested from the store
const DefaultPageSize = 100

// CandidateStore pages through stored candidates
type CandidateStore interface {
	ListCandidates(ctx context.Context, q types.CandidateQuery) (*types.CandidatePage, error)
}

// ReadCorpus loads every active candidate, following page tokens until the store reports
// the last page. Any page failure fails the whole read so a run never scores a partial pool.
// Profiles are returned in store order, which is the tie-break order for ranking.
func ReadCorpus(ctx context.Context, store CandidateStore, pageSize int) ([]types.CandidateProfile, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var profiles []types.CandidateProfile
	seen := make(map[string]bool)
	query := types.CandidateQuery{Status: types.CandidateStatusActive, PageSize: pageSize}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := store.ListCandidates(ctx, query)
		if err != nil {
			return nil, apperrors.StoreUnavailable("failed to read candidate page", err)
		}
		if page == nil {
			return nil, apperrors.StoreUnavailable("candidate store returned no page", nil)
		}

		for _, record := range page.Candidates {
			profile := parsing.NormalizeCandidate(record)
			if !profile.IsEligible() {
				continue
			}
			profiles = append(profiles, profile)
		}

		if page.NextToken == "" {
			return profiles, nil
		}
		if seen[page.NextToken] || page.NextToken == query.PageToken {
			return nil, apperrors.StoreUnavailable(fmt.Sprintf("candidate store repeated page token %q", page.NextToken), nil)
		}
		seen[page.NextToken] = true
		query.PageToken = page.NextToken
	}
}
