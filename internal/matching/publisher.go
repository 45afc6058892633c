package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/apperrors"
	"github.com/jonathan/candidate-matcher/internal/logger"
	"github.com/jonathan/candidate-matcher/internal/metrics"
	"github.com/jonathan/candidate-matcher/internal/ranking"
	"github.com/jonathan/candidate-matcher/internal/schemas"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// PersistencePolicy decides what a failed match-run save means for the caller
type PersistencePolicy string

const (
	// PersistenceFail surfaces the save failure as the run's error
	PersistenceFail PersistencePolicy = "fail"
	// PersistenceDegraded returns the computed result with Persisted=false
	PersistenceDegraded PersistencePolicy = "degraded"
)

// runIDLayout is RFC 3339 with fixed millisecond precision, so IDs sort by time
const runIDLayout = "2006-01-02T15:04:05.000Z07:00"

// MatchStore persists match runs
type MatchStore interface {
	SaveMatchRun(ctx context.Context, run *types.MatchRunRecord) error
}

// EventPublisher announces completed match runs
type EventPublisher interface {
	PublishMatchRun(ctx context.Context, run *types.MatchRunRecord) error
}

// Publisher packages a ranked list into a MatchRunRecord, saves it and announces it
type Publisher struct {
	store  MatchStore
	events EventPublisher
	policy PersistencePolicy
	topN   int
	log    *zap.Logger
	now    func() time.Time
}

// NewPublisher creates a publisher. A nil store skips persistence and a nil events
// publisher skips announcements.
func NewPublisher(store MatchStore, events EventPublisher, policy PersistencePolicy, topN int, log *zap.Logger) *Publisher {
	if policy == "" {
		policy = PersistenceFail
	}
	if topN <= 0 {
		topN = ranking.DefaultTopN
	}
	return &Publisher{
		store:  store,
		events: events,
		policy: policy,
		topN:   topN,
		log:    logger.OrNop(log),
		now:    time.Now,
	}
}

// Persists reports whether runs are saved to a match store
func (p *Publisher) Persists() bool {
	return p.store != nil
}

// NewRunID returns the run identifier for a job scored at ts
func NewRunID(jobID string, ts time.Time) string {
	return jobID + "-" + ts.UTC().Format(runIDLayout)
}

// Publish builds the run record from the full ranked list, persists it and returns the
// caller's view holding the top N results. The record is returned even when saving fails.
func (p *Publisher) Publish(ctx context.Context, jobID string, strategy types.ScoringOutcome, ranked []types.MatchResult) (*types.MatchResponse, *types.MatchRunRecord, error) {
	ts := p.now().UTC()
	if ranked == nil {
		ranked = []types.MatchResult{}
	}

	run := &types.MatchRunRecord{
		ID:                NewRunID(jobID, ts),
		JobID:             jobID,
		Timestamp:         ts,
		Strategy:          strategy,
		MatchedCandidates: ranked,
		MatchCount:        len(ranked),
	}
	response := &types.MatchResponse{
		RunID:             run.ID,
		JobID:             jobID,
		MatchedCandidates: ranking.Top(ranked, p.topN),
		MatchCount:        run.MatchCount,
		Timestamp:         ts,
	}
	log := p.log.With(zap.String(logger.FieldJobID, jobID), zap.String(logger.FieldRunID, run.ID))

	if err := validateRun(run); err != nil {
		return nil, run, apperrors.Internal("match run failed validation", err)
	}

	if p.store == nil {
		log.Debug("no match store configured, run not persisted")
		return response, run, nil
	}

	if err := p.store.SaveMatchRun(ctx, run); err != nil {
		saveErr := apperrors.Persistence("failed to save match run", err)
		if p.policy == PersistenceDegraded {
			log.Error("match run not persisted, returning degraded result", zap.Error(saveErr))
			return response, run, nil
		}
		return nil, run, saveErr
	}
	response.Persisted = true

	p.announce(ctx, run, log)
	return response, run, nil
}

// announce publishes the run event. Failures are logged only.
func (p *Publisher) announce(ctx context.Context, run *types.MatchRunRecord, log *zap.Logger) {
	if p.events == nil {
		return
	}
	if err := p.events.PublishMatchRun(ctx, run); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		log.Warn("failed to publish match run event", zap.Error(err))
		return
	}
	metrics.EventsPublished.WithLabelValues("success").Inc()
}

func validateRun(run *types.MatchRunRecord) error {
	doc, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode match run: %w", err)
	}
	return schemas.Validate(schemas.MatchRunSchema, doc)
}
