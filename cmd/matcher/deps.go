package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/cache"
	"github.com/jonathan/candidate-matcher/internal/config"
	"github.com/jonathan/candidate-matcher/internal/db"
	"github.com/jonathan/candidate-matcher/internal/events"
	"github.com/jonathan/candidate-matcher/internal/inference"
	"github.com/jonathan/candidate-matcher/internal/llm"
	"github.com/jonathan/candidate-matcher/internal/matching"
)

// runtime holds the wired collaborators of a command and how to release them
type runtime struct {
	db      *db.DB
	jobs    matching.JobStore
	cache   *cache.JobCache
	engine  *matching.Engine
	closers []func()
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

type wireOptions struct {
	persist bool // false for dry runs: no match store, no events
}

// wire connects the database and the optional cache, predictor and event bus.
func wire(ctx context.Context, cfg *config.Config, log *zap.Logger, opts wireOptions) (*runtime, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database URL is required (MATCHER_DATABASE_URL or DATABASE_URL)")
	}

	rt := &runtime{}
	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	rt.db = database
	rt.closers = append(rt.closers, database.Close)
	rt.jobs = database

	if cfg.Redis.Addr != "" {
		store := cache.NewRedisStore(cache.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := store.Ping(ctx); err != nil {
			log.Warn("redis unavailable, job cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = store.Close()
		} else {
			rt.cache = cache.NewJobCache(database, store, cfg.Redis.TTL, log)
			rt.jobs = rt.cache
			rt.closers = append(rt.closers, func() { _ = store.Close() })
		}
	}

	predictor, closePredictor, err := buildPredictor(ctx, cfg.Inference, log)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.closers = append(rt.closers, closePredictor)

	deps := matching.Deps{
		Jobs:       rt.jobs,
		Candidates: database,
		Predictor:  predictor,
		Logger:     log,
	}

	if opts.persist {
		deps.Matches = database
		if cfg.NATS.URL != "" {
			publisher, err := events.NewNATSPublisher(events.Options{
				URL:     cfg.NATS.URL,
				Subject: cfg.NATS.Subject,
				TopN:    cfg.Scoring.TopN,
			}, log)
			if err != nil {
				log.Warn("nats unavailable, match events disabled", zap.String("url", cfg.NATS.URL), zap.Error(err))
			} else {
				deps.Events = publisher
				rt.closers = append(rt.closers, publisher.Close)
			}
		}
	}

	rt.engine = matching.NewEngine(deps, engineOptions(cfg))
	return rt, nil
}

func engineOptions(cfg *config.Config) matching.Options {
	return matching.Options{
		Workers:           cfg.Scoring.Workers,
		Threshold:         cfg.Scoring.Threshold,
		TopN:              cfg.Scoring.TopN,
		PageSize:          cfg.Scoring.PageSize,
		PersistencePolicy: matching.PersistencePolicy(cfg.Matching.PersistencePolicy),
	}
}

// buildPredictor selects the inference backend and wraps it in a circuit breaker when enabled.
func buildPredictor(ctx context.Context, cfg config.InferenceConfig, log *zap.Logger) (inference.Predictor, func(), error) {
	noop := func() {}

	var predictor inference.Predictor
	closer := noop
	switch cfg.Provider {
	case config.ProviderNone, "":
		return inference.Disabled{}, noop, nil
	case config.ProviderHTTP:
		predictor = inference.NewHTTPPredictor(cfg.Endpoint, cfg.Timeout)
	case config.ProviderGemini:
		client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.APIKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		predictor = inference.NewLLMPredictor(client)
		closer = func() { _ = client.Close() }
	default:
		return nil, nil, fmt.Errorf("unknown inference provider %q", cfg.Provider)
	}

	if cfg.Breaker.Enabled {
		predictor = inference.NewBreakerPredictor(predictor, breakerSettings(cfg), log)
	}
	log.Info("inference configured", zap.String("provider", cfg.Provider), zap.Bool("breaker", cfg.Breaker.Enabled))
	return predictor, closer, nil
}

func breakerSettings(cfg config.InferenceConfig) inference.BreakerSettings {
	settings := inference.DefaultBreakerSettings()
	settings.Name = "inference-" + cfg.Provider
	if cfg.Breaker.MaxRequests > 0 {
		settings.MaxRequests = cfg.Breaker.MaxRequests
	}
	if cfg.Breaker.Interval > 0 {
		settings.Interval = cfg.Breaker.Interval
	}
	if cfg.Breaker.Timeout > 0 {
		settings.Timeout = cfg.Breaker.Timeout
	}
	if cfg.Breaker.MinRequests > 0 {
		settings.MinRequests = cfg.Breaker.MinRequests
	}
	if cfg.Breaker.FailureRatio > 0 {
		settings.FailureRatio = cfg.Breaker.FailureRatio
	}
	return settings
}

// commandTimeout bounds one-shot commands
const commandTimeout = 5 * time.Minute
