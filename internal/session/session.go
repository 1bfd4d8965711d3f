// Package session owns the lifecycle of one trading session: a pipeline
// instance fed ticks in order, with recording and signal bookkeeping.
package session

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cconley717/Coin180/internal/metrics"
	"github.com/cconley717/Coin180/internal/pipeline"
	"github.com/cconley717/Coin180/internal/recorder"
	"github.com/cconley717/Coin180/internal/signal"
)

// Controller drives a single session. Stage state lives for the controller's
// lifetime and is never shared across sessions.
type Controller struct {
	log    zerolog.Logger
	pipe   *pipeline.Pipeline
	rec    *recorder.Writer
	ledger *Ledger
}

// Option configures Controller construction parameters.
type Option func(*Controller)

// WithRecorder attaches a tick-record writer to the session.
func WithRecorder(w *recorder.Writer) Option {
	return func(c *Controller) { c.rec = w }
}

// New constructs a controller and its session-scoped pipeline. Configuration
// errors surface immediately and the session does not start.
func New(log zerolog.Logger, cfg pipeline.Config, opts ...Option) (*Controller, error) {
	pipe, err := pipeline.New(cfg)
	if err != nil {
		return nil, err
	}
	c := &Controller{log: log, pipe: pipe, ledger: NewLedger(64)}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Ledger exposes the session's emitted-signal ledger.
func (c *Controller) Ledger() *Ledger { return c.ledger }

// Run processes ticks from the channel until the context is canceled. Ticks
// must arrive in order; the stateful analyzers are order-sensitive.
func (c *Controller) Run(ctx context.Context, ticks <-chan signal.Tick) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tk := <-ticks:
			c.Process(tk)
		}
	}
}

// Process runs a single tick through the pipeline and handles its outcome.
func (c *Controller) Process(tk signal.Tick) signal.TickRecord {
	rec := c.pipe.Process(tk.Score, tk.Ts)
	if rec.Rejected {
		metrics.TicksRejected.Inc()
		c.log.Warn().Float64("score", tk.Score).Time("ts", tk.Ts).Msg("rejected non-finite score")
		return rec
	}
	if c.rec != nil {
		if err := c.rec.Record(rec); err != nil {
			c.log.Error().Err(err).Msg("failed to record tick")
		}
	}
	if out := rec.Final(); out.Signal != signal.Neutral {
		c.ledger.Record(Event{Signal: out.Signal, Confidence: out.Confidence, Raw: rec.Raw, Ts: rec.Ts})
		metrics.SignalsTotal.WithLabelValues(string(out.Signal)).Inc()
		c.log.Info().
			Str("signal", string(out.Signal)).
			Float64("confidence", out.Confidence).
			Float64("raw", rec.Raw).
			Float64("filtered", rec.Filtered).
			Msg("signal emitted")
	}
	return rec
}
