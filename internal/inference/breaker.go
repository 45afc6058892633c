package inference

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/metrics"
)

// BreakerSettings configures BreakerPredictor
type BreakerSettings struct {
	Name         string
	MaxRequests  uint32        // requests allowed through while half-open
	Interval     time.Duration // closed-state count reset interval
	Timeout      time.Duration // open-state duration before half-open
	MinRequests  uint32        // requests needed before the failure ratio is considered
	FailureRatio float64
}

// DefaultBreakerSettings returns the settings used for the HTTP endpoint
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:         "inference",
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// BreakerPredictor wraps a Predictor with a circuit breaker. While the circuit is open
// the probe reports the predictor as unavailable, so whole runs go to the rule path
// instead of failing candidate by candidate.
type BreakerPredictor struct {
	next Predictor
	cb   *gobreaker.CircuitBreaker[*Prediction]
	name string
}

// NewBreakerPredictor wraps next with a circuit breaker
func NewBreakerPredictor(next Predictor, settings BreakerSettings, log *zap.Logger) *BreakerPredictor {
	if log == nil {
		log = zap.NewNop()
	}
	name := settings.Name
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[*Prediction](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= settings.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &BreakerPredictor{next: next, cb: cb, name: name}
}

// Available reports false without probing while the circuit is open.
func (b *BreakerPredictor) Available(ctx context.Context) (bool, error) {
	if b.cb.State() == gobreaker.StateOpen {
		return false, nil
	}
	return b.next.Available(ctx)
}

// Predict runs the wrapped predictor through the circuit breaker.
func (b *BreakerPredictor) Predict(ctx context.Context, features Features) (*Prediction, error) {
	prediction, err := b.cb.Execute(func() (*Prediction, error) {
		return b.next.Predict(ctx, features)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return prediction, nil
}

// State returns the breaker's current state
func (b *BreakerPredictor) State() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
