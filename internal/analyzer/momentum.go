package analyzer

import (
	"fmt"
	"math"

	"github.com/cconley717/Coin180/internal/signal"
)

// MomentumConfig holds the tunable knobs for a MomentumAnalyzer.
type MomentumConfig struct {
	// RSIPeriod is the averaging period of the internal oscillator engine.
	RSIPeriod int `yaml:"rsi_period"`
	// Adaptive controls the z-score lookback window.
	Adaptive AdaptiveConfig `yaml:"adaptive"`
	// RSIWeight and ZWeight blend the oscillator output and the z-score into
	// the composite; they are normalized to sum to 1.
	RSIWeight float64 `yaml:"rsi_weight"`
	ZWeight   float64 `yaml:"z_weight"`
	// BuyThreshold and SellThreshold classify the composite; they must
	// straddle zero and lie within [-1,1].
	BuyThreshold  float64 `yaml:"buy_threshold"`
	SellThreshold float64 `yaml:"sell_threshold"`
	// HysteresisCount is the flip debounce length; <= 0 disables it.
	HysteresisCount int `yaml:"hysteresis_count"`
	// ConfidenceDecayRate drives the decay of a repeating directional intent.
	ConfidenceDecayRate float64 `yaml:"confidence_decay_rate"`
}

func (c MomentumConfig) validate() error {
	if c.RSIPeriod < 2 {
		return fmt.Errorf("momentum: rsi period must be >= 2, got %d", c.RSIPeriod)
	}
	if err := c.Adaptive.validate("momentum"); err != nil {
		return err
	}
	if c.RSIWeight < 0 || c.ZWeight < 0 {
		return fmt.Errorf("momentum: weights must be >= 0, got rsi=%g z=%g", c.RSIWeight, c.ZWeight)
	}
	if err := validateThresholds("momentum", c.BuyThreshold, c.SellThreshold); err != nil {
		return err
	}
	if c.ConfidenceDecayRate < 0 {
		return fmt.Errorf("momentum: confidence decay rate must be >= 0, got %g", c.ConfidenceDecayRate)
	}
	return nil
}

func validateThresholds(stage string, buy, sell float64) error {
	if !(sell < 0 && 0 < buy) {
		return fmt.Errorf("%s: thresholds must straddle zero, got buy=%g sell=%g", stage, buy, sell)
	}
	if buy > 1 || sell < -1 {
		return fmt.Errorf("%s: thresholds must lie within [-1,1], got buy=%g sell=%g", stage, buy, sell)
	}
	return nil
}

// MomentumSnapshot is an immutable trace of the analyzer's latest computation.
type MomentumSnapshot struct {
	ZWindow     int     `json:"zWindow"`
	RSI         float64 `json:"rsi"`
	ZScore      float64 `json:"zScore"`
	Composite   float64 `json:"composite"`
	Persistence int     `json:"persistence"`
	Agreement   int     `json:"agreement"`
	Reason      string  `json:"reason"`
}

// MomentumAnalyzer fuses the oscillator engine's normalized momentum with an
// adaptive-window z-score of the filtered series, debounced by hysteresis.
type MomentumAnalyzer struct {
	cfg         MomentumConfig
	osc         *Oscillator
	hist        *history
	deb         debounce
	lastIntent  direction
	persistence int
	snap        MomentumSnapshot
}

// NewMomentumAnalyzer validates the configuration and returns a fresh analyzer.
func NewMomentumAnalyzer(cfg MomentumConfig) (*MomentumAnalyzer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	osc, err := NewOscillator(cfg.RSIPeriod)
	if err != nil {
		return nil, err
	}
	capacity := cfg.Adaptive.largestWindow()
	if cfg.RSIPeriod > capacity {
		capacity = cfg.RSIPeriod
	}
	return &MomentumAnalyzer{
		cfg:  cfg,
		osc:  osc,
		hist: newHistory(2 * capacity),
		deb:  debounce{need: cfg.HysteresisCount},
	}, nil
}

// Update folds one filtered score into the analyzer and returns its stance.
func (m *MomentumAnalyzer) Update(filtered float64) signal.Result {
	m.hist.push(filtered)
	rsi, ready := m.osc.Update(filtered)
	zWindow := m.cfg.Adaptive.window(m.hist)

	if !ready || m.hist.size() < zWindow {
		m.snap = MomentumSnapshot{ZWindow: zWindow, Reason: "warming"}
		return signal.NeutralResult()
	}

	values := m.hist.lastN(zWindow)
	mean, std := meanStd(values)
	z := (filtered - mean) / math.Max(std, 1e-6)
	z = math.Max(-3, math.Min(3, z)) / 3

	wRSI, wZ := 0.5, 0.5
	if total := m.cfg.RSIWeight + m.cfg.ZWeight; total > 0 {
		wRSI = m.cfg.RSIWeight / total
		wZ = m.cfg.ZWeight / total
	}
	composite := wRSI*rsi + wZ*z

	intent := dirFlat
	switch {
	case composite >= m.cfg.BuyThreshold:
		intent = dirUp
	case composite <= m.cfg.SellThreshold:
		intent = dirDown
	}

	confidence := math.Min(1, math.Abs(composite))

	// Decay tracks the pre-hysteresis intent: a repeating intent matching the
	// last confirmed direction loses confidence; a brand-new intent does not.
	repeat := intent != dirFlat && intent == m.lastIntent
	if intent == dirFlat || intent != m.lastIntent {
		m.persistence = 0
	}
	if repeat && intent == m.deb.confirmed {
		m.persistence++
		confidence *= math.Exp(-m.cfg.ConfidenceDecayRate * float64(m.persistence))
	}
	m.lastIntent = intent
	confidence = clamp01(confidence)

	switch {
	case intent == dirFlat:
		m.deb.clearPending()
		m.record(zWindow, rsi, z, composite, "flat")
		return signal.NeutralResult()

	case m.cfg.HysteresisCount <= 0:
		m.deb.confirm(intent)
		m.record(zWindow, rsi, z, composite, "immediate")
		return signal.Result{Signal: intent.signal(), Confidence: confidence}

	case intent == m.deb.confirmed:
		m.deb.clearPending()
		m.record(zWindow, rsi, z, composite, "holding")
		return signal.Result{Signal: intent.signal(), Confidence: confidence}

	default:
		if m.deb.observe(intent) {
			m.record(zWindow, rsi, z, composite, "confirmed")
			return signal.Result{Signal: intent.signal(), Confidence: confidence}
		}
		m.record(zWindow, rsi, z, composite, "forming")
		return signal.NeutralResult()
	}
}

func (m *MomentumAnalyzer) record(zWindow int, rsi, z, composite float64, reason string) {
	m.snap = MomentumSnapshot{
		ZWindow:     zWindow,
		RSI:         rsi,
		ZScore:      z,
		Composite:   composite,
		Persistence: m.persistence,
		Agreement:   m.deb.agreement,
		Reason:      reason,
	}
}

// Snapshot returns a copy of the latest computation trace.
func (m *MomentumAnalyzer) Snapshot() MomentumSnapshot { return m.snap }
