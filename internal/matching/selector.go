package matching

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/candidate-matcher/internal/apperrors"
	"github.com/jonathan/candidate-matcher/internal/inference"
	"github.com/jonathan/candidate-matcher/internal/logger"
	"github.com/jonathan/candidate-matcher/internal/metrics"
	"github.com/jonathan/candidate-matcher/internal/ranking"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// DefaultWorkers bounds concurrent candidate scoring
const DefaultWorkers = 8

// Selector chooses between the predictor and the rule-based aggregator. The choice is
// made once per run by Probe; inside an ML run a failed prediction falls back to the
// rules for that candidate only.
type Selector struct {
	predictor inference.Predictor
	workers   int
	log       *zap.Logger
}

// NewSelector creates a selector. A nil predictor always selects the rule path.
func NewSelector(predictor inference.Predictor, workers int, log *zap.Logger) *Selector {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Selector{predictor: predictor, workers: workers, log: logger.OrNop(log)}
}

// Probe checks the predictor and returns the strategy for the run. Probe failures are
// never returned: they select the rule path.
func (s *Selector) Probe(ctx context.Context) types.ScoringOutcome {
	if s.predictor == nil {
		return types.OutcomeRule
	}

	ok, err := s.predictor.Available(ctx)
	if err != nil {
		metrics.InferenceFallbacks.WithLabelValues("probe_error").Inc()
		s.log.Warn("inference probe failed, using rule-based scoring",
			zap.Error(apperrors.InferenceUnavailable("probe failed", err)))
		return types.OutcomeRule
	}
	if !ok {
		metrics.InferenceFallbacks.WithLabelValues("unavailable").Inc()
		s.log.Info("inference endpoint not in service, using rule-based scoring")
		return types.OutcomeRule
	}
	return types.OutcomeML
}

// ScoreAll scores every candidate with the given strategy. Result i belongs to candidate i.
// Only context cancellation makes it fail.
func (s *Selector) ScoreAll(ctx context.Context, strategy types.ScoringOutcome, candidates []types.CandidateProfile, req *types.JobRequirement) ([]types.MatchResult, error) {
	results := make([]types.MatchResult, len(candidates))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range candidates {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = s.score(gCtx, strategy, &candidates[i], req)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Selector) score(ctx context.Context, strategy types.ScoringOutcome, candidate *types.CandidateProfile, req *types.JobRequirement) types.MatchResult {
	if strategy == types.OutcomeML && s.predictor != nil {
		prediction, err := s.predictor.Predict(ctx, inference.BuildFeatures(candidate, req))
		if err == nil {
			reasons := prediction.Reasons
			if reasons == nil {
				reasons = []string{}
			}
			metrics.CandidatesScored.WithLabelValues(string(types.OutcomeML)).Inc()
			return types.MatchResult{
				CandidateID:   candidate.ID,
				CandidateName: candidate.Name,
				MatchScore:    prediction.Score,
				MatchReasons:  reasons,
				Source:        types.OutcomeML,
			}
		}

		metrics.InferenceFallbacks.WithLabelValues("invocation").Inc()
		s.log.Warn("prediction failed, falling back to rule-based scoring",
			zap.String(logger.FieldCandidateID, candidate.ID),
			zap.Error(apperrors.InferenceInvocation("prediction failed", err)))
	}

	metrics.CandidatesScored.WithLabelValues(string(types.OutcomeRule)).Inc()
	return ranking.ScoreCandidate(candidate, req)
}
