package analyzer

import (
	"testing"

	"github.com/cconley717/Coin180/internal/signal"
)

func fixedMomentumConfig() MomentumConfig {
	return MomentumConfig{
		RSIPeriod: 3,
		Adaptive: AdaptiveConfig{
			Enabled:         false,
			BaseWindow:      4,
			MinWindow:       2,
			MaxWindow:       16,
			VolatilityScale: 10,
			Sensitivity:     1,
		},
		RSIWeight:           0.5,
		ZWeight:             0.5,
		BuyThreshold:        0.3,
		SellThreshold:       -0.3,
		HysteresisCount:     1,
		ConfidenceDecayRate: 0.1,
	}
}

func newMomentum(t *testing.T, cfg MomentumConfig) *MomentumAnalyzer {
	t.Helper()
	m, err := NewMomentumAnalyzer(cfg)
	if err != nil {
		t.Fatalf("NewMomentumAnalyzer error: %v", err)
	}
	return m
}

func TestMomentumWarmupIsNeutral(t *testing.T) {
	m := newMomentum(t, fixedMomentumConfig())
	for i := 0; i < 3; i++ {
		res := m.Update(float64(i))
		if res.Signal != signal.Neutral || res.Confidence != 0 {
			t.Fatalf("tick %d: expected Neutral/0 while warming, got %+v", i, res)
		}
	}
}

func TestMomentumConfirmsUptrend(t *testing.T) {
	m := newMomentum(t, fixedMomentumConfig())
	var first signal.Result
	for i := 0; i < 6; i++ {
		res := m.Update(float64(i))
		if res.Signal != signal.Neutral && first.Signal == "" {
			first = res
			break
		}
	}
	if first.Signal != signal.Buy {
		t.Fatalf("expected first non-neutral stance to be Buy, got %+v", first)
	}
	if first.Confidence <= 0 || first.Confidence > 1 {
		t.Fatalf("expected confidence in (0,1], got %g", first.Confidence)
	}
}

func TestMomentumRepeatedIntentDecays(t *testing.T) {
	m := newMomentum(t, fixedMomentumConfig())
	// Saturating uptrend: RSI pins at 1, z-score stays positive, so the
	// intent repeats Buy tick after tick once confirmed.
	var confs []float64
	for i := 0; i < 12; i++ {
		res := m.Update(float64(i * 2))
		if res.Signal == signal.Buy {
			confs = append(confs, res.Confidence)
		}
	}
	if len(confs) < 4 {
		t.Fatalf("expected several Buy stances, got %d", len(confs))
	}
	last := confs[len(confs)-1]
	mid := confs[1]
	if last >= mid {
		t.Fatalf("expected decayed confidence: later %g should be below earlier %g", last, mid)
	}
}

func TestMomentumHysteresisNeverOscillates(t *testing.T) {
	cfg := fixedMomentumConfig()
	cfg.RSIWeight = 0
	cfg.ZWeight = 1
	cfg.HysteresisCount = 2
	m := newMomentum(t, cfg)

	// Alternating 0/10 flips the z-score sign every tick; the composite never
	// agrees twice in a row.
	for i := 0; i < 40; i++ {
		v := 0.0
		if i%2 == 0 {
			v = 10
		}
		res := m.Update(v)
		if res.Signal != signal.Neutral {
			t.Fatalf("tick %d: expected Neutral under oscillation, got %s", i, res.Signal)
		}
	}
}

func TestMomentumNeutralCarriesZeroConfidence(t *testing.T) {
	m := newMomentum(t, fixedMomentumConfig())
	for i := 0; i < 30; i++ {
		// Tiny ripple keeps the composite inside the neutral band.
		v := 0.01 * float64(i%2)
		res := m.Update(v)
		if res.Signal == signal.Neutral && res.Confidence != 0 {
			t.Fatalf("tick %d: neutral stance must carry zero confidence, got %g", i, res.Confidence)
		}
	}
}

func TestMomentumThresholdValidation(t *testing.T) {
	cases := []func(*MomentumConfig){
		func(c *MomentumConfig) { c.BuyThreshold = -0.1 },
		func(c *MomentumConfig) { c.SellThreshold = 0.1 },
		func(c *MomentumConfig) { c.BuyThreshold = 1.5 },
		func(c *MomentumConfig) { c.SellThreshold = -1.5 },
		func(c *MomentumConfig) { c.RSIPeriod = 1 },
		func(c *MomentumConfig) { c.RSIWeight = -1 },
	}
	for i, mutate := range cases {
		cfg := fixedMomentumConfig()
		mutate(&cfg)
		if _, err := NewMomentumAnalyzer(cfg); err == nil {
			t.Fatalf("case %d: expected config error", i)
		}
	}
}
