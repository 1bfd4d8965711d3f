// Package analyzer houses the stateful windowed classifiers of the signal pipeline.
package analyzer

import (
	"fmt"
	"math"
)

// history is a bounded rolling buffer of filtered scores. Inserts append;
// overflow truncates from the front, oldest first.
type history struct {
	cap    int
	values []float64
}

func newHistory(capacity int) *history {
	if capacity < 1 {
		capacity = 1
	}
	return &history{cap: capacity, values: make([]float64, 0, capacity)}
}

func (h *history) push(v float64) {
	h.values = append(h.values, v)
	if len(h.values) > h.cap {
		h.values = h.values[len(h.values)-h.cap:]
	}
}

func (h *history) size() int { return len(h.values) }

// lastN returns a view of the most recent n values; callers must not hold it
// across a push.
func (h *history) lastN(n int) []float64 {
	if n > len(h.values) {
		n = len(h.values)
	}
	return h.values[len(h.values)-n:]
}

func meanStd(values []float64) (mean, std float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= n
	for _, v := range values {
		d := v - mean
		std += d * d
	}
	std = math.Sqrt(std / n)
	return mean, std
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AdaptiveConfig controls the volatility-driven lookback used by the trend
// and momentum stages: high observed volatility shrinks the window toward
// MinWindow, low volatility stretches it toward MaxWindow.
type AdaptiveConfig struct {
	Enabled bool `yaml:"enabled"`
	// BaseWindow is the lookback used to measure volatility, and the fixed
	// window when adaptivity is disabled.
	BaseWindow int `yaml:"base_window"`
	MinWindow  int `yaml:"min_window"`
	MaxWindow  int `yaml:"max_window"`
	// VolatilityScale normalizes the observed standard deviation.
	VolatilityScale float64 `yaml:"volatility_scale"`
	// Sensitivity scales the normalized volatility before clamping to [0,1].
	Sensitivity float64 `yaml:"sensitivity"`
}

func (c AdaptiveConfig) validate(stage string) error {
	if c.BaseWindow < 2 {
		return fmt.Errorf("%s: base window must be >= 2, got %d", stage, c.BaseWindow)
	}
	if c.MinWindow < 2 {
		return fmt.Errorf("%s: adaptive min window must be >= 2, got %d", stage, c.MinWindow)
	}
	if c.MaxWindow <= c.MinWindow {
		return fmt.Errorf("%s: adaptive max window %d must exceed min window %d", stage, c.MaxWindow, c.MinWindow)
	}
	if c.VolatilityScale <= 0 {
		return fmt.Errorf("%s: volatility scale must be > 0, got %g", stage, c.VolatilityScale)
	}
	if c.Sensitivity <= 0 {
		return fmt.Errorf("%s: sensitivity must be > 0, got %g", stage, c.Sensitivity)
	}
	return nil
}

// largestWindow bounds the history cap needed to always cover the window.
func (c AdaptiveConfig) largestWindow() int {
	w := c.BaseWindow
	if c.Enabled && c.MaxWindow > w {
		w = c.MaxWindow
	}
	return w
}

// window computes the current lookback from observed volatility, clamped to
// [MinWindow, MaxWindow].
func (c AdaptiveConfig) window(h *history) int {
	if !c.Enabled {
		return c.BaseWindow
	}
	n := c.BaseWindow
	if h.size() < n {
		n = h.size()
	}
	if n < 2 {
		return clampInt(c.BaseWindow, c.MinWindow, c.MaxWindow)
	}
	_, std := meanStd(h.lastN(n))
	vol := clamp01(std / c.VolatilityScale * c.Sensitivity)
	w := float64(c.MaxWindow) - vol*float64(c.MaxWindow-c.MinWindow)
	return clampInt(int(math.Round(w)), c.MinWindow, c.MaxWindow)
}
