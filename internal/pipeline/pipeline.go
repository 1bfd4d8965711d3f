// Package pipeline wires the per-tick signal analysis stages together.
package pipeline

import (
	"math"
	"time"

	"github.com/cconley717/Coin180/internal/analyzer"
	"github.com/cconley717/Coin180/internal/filter"
	"github.com/cconley717/Coin180/internal/signal"
)

// Config aggregates the stage configurations for one session's pipeline.
type Config struct {
	Filter    filter.Config            `yaml:"filter"`
	Trend     analyzer.TrendConfig     `yaml:"trend"`
	Momentum  analyzer.MomentumConfig  `yaml:"momentum"`
	Consensus analyzer.ConsensusConfig `yaml:"consensus"`
	// Debug attaches per-stage computation snapshots to every tick record.
	Debug bool `yaml:"debug"`
}

// Pipeline processes one raw sentiment score per tick, fully synchronously:
// noise filter, then trend and momentum classifiers on the filtered score,
// then consensus fusion over both stances plus the raw print.
type Pipeline struct {
	cfg       Config
	filter    *filter.NoiseFilter
	trend     *analyzer.TrendClassifier
	momentum  *analyzer.MomentumAnalyzer
	consensus *analyzer.ConsensusAnalyzer
	seq       uint64
}

// New validates every stage configuration and constructs the session pipeline.
// Any configuration error prevents construction entirely.
func New(cfg Config) (*Pipeline, error) {
	nf, err := filter.New(cfg.Filter)
	if err != nil {
		return nil, err
	}
	tc, err := analyzer.NewTrendClassifier(cfg.Trend)
	if err != nil {
		return nil, err
	}
	ma, err := analyzer.NewMomentumAnalyzer(cfg.Momentum)
	if err != nil {
		return nil, err
	}
	ca, err := analyzer.NewConsensusAnalyzer(cfg.Consensus)
	if err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg, filter: nf, trend: tc, momentum: ma, consensus: ca}, nil
}

// Process runs one tick through every stage and returns the structured record.
// A non-finite score is rejected without mutating any stage state; the record
// is marked rejected and carries neutral results.
func (p *Pipeline) Process(score float64, ts time.Time) signal.TickRecord {
	p.seq++
	rec := signal.TickRecord{
		Seq:       p.seq,
		Ts:        ts,
		Raw:       score,
		Trend:     signal.StageOutput{Result: signal.NeutralResult()},
		Momentum:  signal.StageOutput{Result: signal.NeutralResult()},
		Consensus: signal.StageOutput{Result: signal.NeutralResult()},
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		rec.Rejected = true
		rec.Filtered = p.filter.Last()
		return rec
	}

	filtered := p.filter.Update(score)
	rec.Filtered = filtered
	rec.Trend.Result = p.trend.Update(filtered)
	rec.Momentum.Result = p.momentum.Update(filtered)
	rec.Consensus.Result = p.consensus.Update(analyzer.Inputs{
		Trend:    rec.Trend.Result,
		Momentum: rec.Momentum.Result,
		RawScore: score,
	})

	if p.cfg.Debug {
		rec.Trend.Debug = p.trend.Snapshot()
		rec.Momentum.Debug = p.momentum.Snapshot()
		rec.Consensus.Debug = p.consensus.Snapshot()
	}
	return rec
}
