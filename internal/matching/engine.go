package matching

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/apperrors"
	"github.com/jonathan/candidate-matcher/internal/inference"
	"github.com/jonathan/candidate-matcher/internal/logger"
	"github.com/jonathan/candidate-matcher/internal/metrics"
	"github.com/jonathan/candidate-matcher/internal/parsing"
	"github.com/jonathan/candidate-matcher/internal/ranking"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// JobStore loads job records
type JobStore interface {
	// GetJob returns the job or an apperrors NOT_FOUND error.
	GetJob(ctx context.Context, id string) (*types.JobRecord, error)
}

// ProgressEvent represents a progress update during a match run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	JobID   string `json:"job_id"`
	Count   int    `json:"count,omitempty"`
}

// ProgressCallback is called after each step of a match run
type ProgressCallback func(event ProgressEvent)

// Options tunes a match run
type Options struct {
	Workers           int
	Threshold         float64 // results must score strictly above this
	TopN              int
	PageSize          int
	PersistencePolicy PersistencePolicy
	Progress          ProgressCallback
}

// DefaultOptions returns the production defaults
func DefaultOptions() Options {
	return Options{
		Workers:           DefaultWorkers,
		Threshold:         ranking.DefaultThreshold,
		TopN:              ranking.DefaultTopN,
		PageSize:          DefaultPageSize,
		PersistencePolicy: PersistenceFail,
	}
}

// Deps are the collaborators of an Engine. Matches, Predictor and Events may be nil.
type Deps struct {
	Jobs       JobStore
	Candidates CandidateStore
	Matches    MatchStore
	Predictor  inference.Predictor
	Events     EventPublisher
	Logger     *zap.Logger
}

// Engine scores and ranks the candidate pool against a job
type Engine struct {
	jobs       JobStore
	candidates CandidateStore
	selector   *Selector
	publisher  *Publisher
	opts       Options
	log        *zap.Logger
}

// NewEngine creates an engine. Zero-valued options fall back to DefaultOptions.
func NewEngine(deps Deps, opts Options) *Engine {
	defaults := DefaultOptions()
	if opts.Workers <= 0 {
		opts.Workers = defaults.Workers
	}
	if opts.Threshold <= 0 {
		opts.Threshold = defaults.Threshold
	}
	if opts.TopN <= 0 {
		opts.TopN = defaults.TopN
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaults.PageSize
	}
	if opts.PersistencePolicy == "" {
		opts.PersistencePolicy = defaults.PersistencePolicy
	}

	log := logger.OrNop(deps.Logger)
	return &Engine{
		jobs:       deps.Jobs,
		candidates: deps.Candidates,
		selector:   NewSelector(deps.Predictor, opts.Workers, log),
		publisher:  NewPublisher(deps.Matches, deps.Events, opts.PersistencePolicy, opts.TopN, log),
		opts:       opts,
		log:        log,
	}
}

// Match runs one scoring pass for jobID and returns the top results.
//
// Validation, not-found and store failures stop the run. Inference problems never do:
// they switch the run, or a single candidate, to rule-based scoring.
func (e *Engine) Match(ctx context.Context, jobID string) (*types.MatchResponse, error) {
	return e.MatchWithProgress(ctx, jobID, e.opts.Progress)
}

// MatchWithProgress is Match with a per-call progress callback, which replaces Options.Progress.
func (e *Engine) MatchWithProgress(ctx context.Context, jobID string, progress ProgressCallback) (*types.MatchResponse, error) {
	start := time.Now()
	strategy := types.OutcomeRule

	response, err := e.match(ctx, jobID, &strategy, progress)

	metrics.RecordRun(string(strategy), runResult(response, err, e.publisher.Persists()), time.Since(start))

	return response, err
}

// runResult labels a finished run for metrics. Runs without a match store are dry runs,
// never degraded ones.
func runResult(response *types.MatchResponse, err error, persists bool) string {
	switch {
	case err != nil:
		return "error"
	case !persists:
		return "dry_run"
	case !response.Persisted:
		return "degraded"
	}
	return "success"
}

func (e *Engine) match(ctx context.Context, jobID string, strategy *types.ScoringOutcome, progress ProgressCallback) (*types.MatchResponse, error) {
	request := types.MatchRequest{JobID: jobID}
	if err := request.Validate(); err != nil {
		return nil, apperrors.Validation("a job id is required", err)
	}
	jobID = request.JobID
	log := e.log.With(zap.String(logger.FieldJobID, jobID))

	job, err := e.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	req := parsing.NormalizeRequirement(*job)
	notify(progress, "requirement", "Job requirements normalized", jobID, len(req.RequiredSkills))

	candidates, err := ReadCorpus(ctx, e.candidates, e.opts.PageSize)
	if err != nil {
		return nil, err
	}
	notify(progress, "corpus", "Candidate pool loaded", jobID, len(candidates))

	*strategy = e.selector.Probe(ctx)
	log = log.With(zap.String(logger.FieldStrategy, string(*strategy)))

	scored, err := e.selector.ScoreAll(ctx, *strategy, candidates, &req)
	if err != nil {
		return nil, err
	}
	notify(progress, "scoring", "Candidates scored", jobID, len(scored))

	ranked := ranking.Rank(scored, e.opts.Threshold)
	notify(progress, "ranking", "Candidates ranked", jobID, len(ranked))

	response, run, err := e.publisher.Publish(ctx, jobID, *strategy, ranked)
	if err != nil {
		log.Error("match run failed", zap.String(logger.FieldRunID, run.ID), zap.Error(err))
		return nil, err
	}
	notify(progress, "publish", "Match run published", jobID, response.MatchCount)

	log.Info("match run completed",
		zap.String(logger.FieldRunID, run.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", run.MatchCount),
		zap.Bool("persisted", response.Persisted))

	return response, nil
}

// loadJob fetches the job, classifying untyped store errors as STORE_UNAVAILABLE.
func (e *Engine) loadJob(ctx context.Context, jobID string) (*types.JobRecord, error) {
	job, err := e.jobs.GetJob(ctx, jobID)
	if err != nil {
		var de *apperrors.DomainError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, apperrors.StoreUnavailable("failed to load job", err)
	}
	if job == nil {
		return nil, apperrors.NotFound("job "+jobID+" not found", nil)
	}
	if job.ID == "" {
		job.ID = jobID
	}
	return job, nil
}

func notify(progress ProgressCallback, step, message, jobID string, count int) {
	if progress == nil {
		return
	}
	progress(ProgressEvent{Step: step, Message: message, JobID: jobID, Count: count})
}
