package analyzer

import (
	"fmt"
	"math"

	"github.com/cconley717/Coin180/internal/signal"
)

// TrendConfig holds the tunable knobs for a TrendClassifier.
type TrendConfig struct {
	Adaptive AdaptiveConfig `yaml:"adaptive"`
	// MinSlopeMagnitude is the flat band: slopes below it carry no direction.
	MinSlopeMagnitude float64 `yaml:"min_slope_magnitude"`
	// HysteresisCount is the number of consecutive agreeing observations
	// required to confirm a flip; <= 0 disables debouncing.
	HysteresisCount int `yaml:"hysteresis_count"`
	// ConfidenceMultiplier scales confidence on a confirmed flip.
	ConfidenceMultiplier float64 `yaml:"confidence_multiplier"`
	// ConfidenceDecayRate drives the exponential decay of a weak persisting trend.
	ConfidenceDecayRate float64 `yaml:"confidence_decay_rate"`
}

func (c TrendConfig) validate() error {
	if err := c.Adaptive.validate("trend"); err != nil {
		return err
	}
	if c.MinSlopeMagnitude <= 0 {
		return fmt.Errorf("trend: min slope magnitude must be > 0, got %g", c.MinSlopeMagnitude)
	}
	if c.ConfidenceMultiplier <= 0 {
		return fmt.Errorf("trend: confidence multiplier must be > 0, got %g", c.ConfidenceMultiplier)
	}
	if c.ConfidenceDecayRate < 0 {
		return fmt.Errorf("trend: confidence decay rate must be >= 0, got %g", c.ConfidenceDecayRate)
	}
	return nil
}

// TrendSnapshot is an immutable trace of the classifier's latest computation.
type TrendSnapshot struct {
	Window      int     `json:"window"`
	Slope       float64 `json:"slope"`
	Confidence  float64 `json:"confidence"`
	Persistence int     `json:"persistence"`
	Agreement   int     `json:"agreement"`
	Reason      string  `json:"reason"`
}

// TrendClassifier derives a directional signal from the slope of the filtered
// series over an adaptive window, debounced by hysteresis.
type TrendClassifier struct {
	cfg         TrendConfig
	hist        *history
	deb         debounce
	persistence int
	snap        TrendSnapshot
}

// NewTrendClassifier validates the configuration and returns a fresh classifier.
func NewTrendClassifier(cfg TrendConfig) (*TrendClassifier, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &TrendClassifier{
		cfg:  cfg,
		hist: newHistory(2 * cfg.Adaptive.largestWindow()),
		deb:  debounce{need: cfg.HysteresisCount},
	}, nil
}

// Update folds one filtered score into the classifier and returns its stance.
// A non-neutral signal is only emitted on a confirmed directional flip; the
// holding and forming branches publish neutral results whose confidence feeds
// the consensus stage.
func (t *TrendClassifier) Update(filtered float64) signal.Result {
	t.hist.push(filtered)
	window := t.cfg.Adaptive.window(t.hist)

	if t.hist.size() < window {
		t.record(window, 0, 0, "warming")
		return signal.NeutralResult()
	}

	values := t.hist.lastN(window)
	slope := (values[len(values)-1] - values[0]) / float64(len(values)-1)
	confidence := math.Min(1, math.Abs(slope)/(t.cfg.MinSlopeMagnitude*5))

	dir := dirFlat
	switch {
	case math.Abs(slope) < t.cfg.MinSlopeMagnitude:
	case slope > 0:
		dir = dirUp
	default:
		dir = dirDown
	}

	switch {
	case dir == dirFlat:
		t.deb.clearPending()
		t.record(window, slope, 0, "flat")
		return signal.NeutralResult()

	case t.cfg.HysteresisCount <= 0:
		t.deb.confirm(dir)
		confidence = clamp01(confidence * t.cfg.ConfidenceMultiplier)
		t.record(window, slope, confidence, "immediate")
		return signal.Result{Signal: dir.signal(), Confidence: confidence}

	case dir == t.deb.confirmed:
		// Same direction as already confirmed: no flip in progress. A weak
		// but persisting slope decays; a strengthening one does not.
		t.deb.clearPending()
		t.persistence++
		if math.Abs(slope) < t.cfg.MinSlopeMagnitude*1.25 {
			confidence *= math.Exp(-t.cfg.ConfidenceDecayRate * float64(t.persistence))
		}
		confidence = clamp01(confidence)
		t.record(window, slope, confidence, "holding")
		return signal.Result{Signal: signal.Neutral, Confidence: confidence}

	default:
		t.persistence = 0
		if t.deb.observe(dir) {
			confidence = clamp01(confidence * t.cfg.ConfidenceMultiplier)
			t.record(window, slope, confidence, "confirmed")
			return signal.Result{Signal: dir.signal(), Confidence: confidence}
		}
		confidence = clamp01(confidence)
		t.record(window, slope, confidence, "forming")
		return signal.Result{Signal: signal.Neutral, Confidence: confidence}
	}
}

func (t *TrendClassifier) record(window int, slope, confidence float64, reason string) {
	t.snap = TrendSnapshot{
		Window:      window,
		Slope:       slope,
		Confidence:  confidence,
		Persistence: t.persistence,
		Agreement:   t.deb.agreement,
		Reason:      reason,
	}
}

// Snapshot returns a copy of the latest computation trace.
func (t *TrendClassifier) Snapshot() TrendSnapshot { return t.snap }
