// Package events announces completed match runs on NATS.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/apperrors"
	"github.com/jonathan/candidate-matcher/internal/logger"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// DefaultSubject is the subject match runs are published on
const DefaultSubject = "matches.completed"

// MatchRunEvent is the message body for a completed run. It carries the top of the
// ranking only; consumers fetch the full run by ID.
type MatchRunEvent struct {
	RunID      string               `json:"run_id"`
	JobID      string               `json:"job_id"`
	Timestamp  time.Time            `json:"timestamp"`
	Strategy   types.ScoringOutcome `json:"strategy"`
	MatchCount int                  `json:"match_count"`
	Top        []types.MatchResult  `json:"top"`
}

// Options configures the NATS connection
type Options struct {
	URL         string
	Subject     string
	ConnTimeout time.Duration
	TopN        int
}

// NATSPublisher publishes match run events
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	topN    int
	log     *zap.Logger
}

// NewNATSPublisher connects to NATS
func NewNATSPublisher(opts Options, log *zap.Logger) (*NATSPublisher, error) {
	if opts.Subject == "" {
		opts.Subject = DefaultSubject
	}
	if opts.ConnTimeout <= 0 {
		opts.ConnTimeout = 5 * time.Second
	}
	if opts.TopN <= 0 {
		opts.TopN = 10
	}

	conn, err := nats.Connect(opts.URL,
		nats.Name("candidate-matcher"),
		nats.Timeout(opts.ConnTimeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, apperrors.Internal("connecting to NATS", err)
	}

	return &NATSPublisher{
		conn:    conn,
		subject: opts.Subject,
		topN:    opts.TopN,
		log:     logger.OrNop(log),
	}, nil
}

// NewMatchRunEvent builds the event for run, keeping at most topN results
func NewMatchRunEvent(run *types.MatchRunRecord, topN int) MatchRunEvent {
	top := run.MatchedCandidates
	if topN > 0 && len(top) > topN {
		top = top[:topN]
	}
	return MatchRunEvent{
		RunID:      run.ID,
		JobID:      run.JobID,
		Timestamp:  run.Timestamp,
		Strategy:   run.Strategy,
		MatchCount: run.MatchCount,
		Top:        top,
	}
}

// PublishMatchRun publishes the run and flushes so delivery failures surface here
func (p *NATSPublisher) PublishMatchRun(ctx context.Context, run *types.MatchRunRecord) error {
	data, err := json.Marshal(NewMatchRunEvent(run, p.topN))
	if err != nil {
		return apperrors.Internal("marshaling match run event", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return apperrors.Internal("publishing to NATS", err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return apperrors.Internal("flushing NATS connection", err)
	}

	p.log.Debug("published match run",
		zap.String(logger.FieldRunID, run.ID),
		zap.String("subject", p.subject))
	return nil
}

// Close drains and closes the connection
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}
