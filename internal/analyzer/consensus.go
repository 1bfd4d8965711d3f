package analyzer

import (
	"fmt"
	"math"

	"github.com/cconley717/Coin180/internal/signal"
)

// FusionMode selects how the two upstream stances combine into one tuple.
type FusionMode string

const (
	// FusionWeighted averages the encoded signals, weighted by confidence.
	FusionWeighted FusionMode = "weighted"
	// FusionUnanimous requires both stages to agree on a non-neutral direction.
	FusionUnanimous FusionMode = "unanimous"
)

// ConsensusConfig holds the tunable knobs for a ConsensusAnalyzer.
type ConsensusConfig struct {
	Mode FusionMode `yaml:"mode"`
	// WindowSize bounds the sliding window of per-tick fusion tuples.
	WindowSize int `yaml:"window_size"`
	// BuyThreshold and SellThreshold classify the windowed consensus score.
	BuyThreshold  float64 `yaml:"buy_threshold"`
	SellThreshold float64 `yaml:"sell_threshold"`
	// SentimentBuyThreshold vetoes a Buy when the raw sentiment score already
	// prints above it; SentimentSellThreshold vetoes a Sell below it.
	SentimentBuyThreshold  float64 `yaml:"sentiment_buy_threshold"`
	SentimentSellThreshold float64 `yaml:"sentiment_sell_threshold"`
}

func (c ConsensusConfig) validate() error {
	switch c.Mode {
	case FusionWeighted, FusionUnanimous:
	default:
		return fmt.Errorf("consensus: unknown fusion mode %q", c.Mode)
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("consensus: window size must be >= 1, got %d", c.WindowSize)
	}
	if err := validateThresholds("consensus", c.BuyThreshold, c.SellThreshold); err != nil {
		return err
	}
	if c.SentimentBuyThreshold < -100 || c.SentimentBuyThreshold > 100 {
		return fmt.Errorf("consensus: sentiment buy threshold must be in [-100,100], got %g", c.SentimentBuyThreshold)
	}
	if c.SentimentSellThreshold < -100 || c.SentimentSellThreshold > 100 {
		return fmt.Errorf("consensus: sentiment sell threshold must be in [-100,100], got %g", c.SentimentSellThreshold)
	}
	return nil
}

// Inputs carries one tick's upstream stances plus the raw sentiment print.
type Inputs struct {
	Trend    signal.Result
	Momentum signal.Result
	RawScore float64
}

// ConsensusSnapshot is an immutable trace of the analyzer's latest computation.
type ConsensusSnapshot struct {
	TupleScore  float64 `json:"tupleScore"`
	TupleWeight float64 `json:"tupleWeight"`
	Score       float64 `json:"score"`
	Vetoed      bool    `json:"vetoed"`
	Suppressed  bool    `json:"suppressed"`
	Reason      string  `json:"reason"`
}

type fusionTuple struct {
	score  float64
	weight float64
}

// ConsensusAnalyzer fuses the trend and momentum stances over a sliding
// window, gates the outcome on the raw sentiment print, and emits a signal
// only on the edge transition from neutral to non-neutral.
type ConsensusAnalyzer struct {
	cfg         ConsensusConfig
	window      []fusionTuple
	lastEmitted signal.Signal
	snap        ConsensusSnapshot
}

// NewConsensusAnalyzer validates the configuration and returns a fresh analyzer.
func NewConsensusAnalyzer(cfg ConsensusConfig) (*ConsensusAnalyzer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &ConsensusAnalyzer{
		cfg:         cfg,
		window:      make([]fusionTuple, 0, cfg.WindowSize),
		lastEmitted: signal.Neutral,
	}, nil
}

// Update folds one tick's upstream results into the window and returns the
// emitted stance for this tick.
func (c *ConsensusAnalyzer) Update(in Inputs) signal.Result {
	tuple := c.fuse(in)
	c.window = append(c.window, tuple)
	if len(c.window) > c.cfg.WindowSize {
		c.window = c.window[len(c.window)-c.cfg.WindowSize:]
	}

	var weighted, total float64
	for _, t := range c.window {
		weighted += t.score * t.weight
		total += t.weight
	}
	if total <= 0 {
		c.lastEmitted = signal.Neutral
		c.snap = ConsensusSnapshot{TupleScore: tuple.score, TupleWeight: tuple.weight, Reason: "no-consensus"}
		return signal.NeutralResult()
	}
	score := weighted / total

	sig := signal.Neutral
	switch {
	case score >= c.cfg.BuyThreshold:
		sig = signal.Buy
	case score <= c.cfg.SellThreshold:
		sig = signal.Sell
	}

	vetoed := false
	if sig == signal.Buy && in.RawScore > c.cfg.SentimentBuyThreshold {
		sig = signal.Neutral
		vetoed = true
	} else if sig == signal.Sell && in.RawScore < c.cfg.SentimentSellThreshold {
		sig = signal.Neutral
		vetoed = true
	}

	// Edge trigger: a non-neutral consensus fires once; re-arms only after
	// consensus drops back to neutral.
	if sig == signal.Neutral {
		c.lastEmitted = signal.Neutral
		reason := "neutral"
		if vetoed {
			reason = "vetoed"
		}
		c.snap = ConsensusSnapshot{TupleScore: tuple.score, TupleWeight: tuple.weight, Score: score, Vetoed: vetoed, Reason: reason}
		return signal.NeutralResult()
	}
	if sig == c.lastEmitted {
		c.snap = ConsensusSnapshot{TupleScore: tuple.score, TupleWeight: tuple.weight, Score: score, Suppressed: true, Reason: "suppressed"}
		return signal.NeutralResult()
	}

	c.lastEmitted = sig
	c.snap = ConsensusSnapshot{TupleScore: tuple.score, TupleWeight: tuple.weight, Score: score, Reason: "emitted"}
	return signal.Result{Signal: sig, Confidence: math.Min(1, math.Abs(score))}
}

func (c *ConsensusAnalyzer) fuse(in Inputs) fusionTuple {
	switch c.cfg.Mode {
	case FusionUnanimous:
		if in.Trend.Signal == in.Momentum.Signal && in.Trend.Signal != signal.Neutral {
			return fusionTuple{
				score:  in.Trend.Signal.Encoded(),
				weight: (in.Trend.Confidence + in.Momentum.Confidence) / 2,
			}
		}
		return fusionTuple{}
	default:
		total := in.Trend.Confidence + in.Momentum.Confidence
		if total <= 0 {
			return fusionTuple{}
		}
		score := (in.Trend.Signal.Encoded()*in.Trend.Confidence + in.Momentum.Signal.Encoded()*in.Momentum.Confidence) / total
		return fusionTuple{score: score, weight: total / 2}
	}
}

// Snapshot returns a copy of the latest computation trace.
func (c *ConsensusAnalyzer) Snapshot() ConsensusSnapshot { return c.snap }
