// Package filter implements the exponential noise filter that smooths raw sentiment scores.
package filter

import (
	"fmt"
	"math"
)

// Config holds the tunable knobs for a NoiseFilter.
type Config struct {
	// Alpha is the exponential smoothing factor in (0,1].
	Alpha float64 `yaml:"alpha"`
	// FreezeThreshold is the deadband: output holds while the accumulated
	// residual stays below this magnitude.
	FreezeThreshold float64 `yaml:"freeze_threshold"`
	// MaxJump caps the magnitude of a single output step.
	MaxJump float64 `yaml:"max_jump"`
}

func (c Config) validate() error {
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("filter: alpha must be in (0,1], got %g", c.Alpha)
	}
	if c.FreezeThreshold < 0 {
		return fmt.Errorf("filter: freeze threshold must be >= 0, got %g", c.FreezeThreshold)
	}
	if c.MaxJump <= 0 {
		return fmt.Errorf("filter: max jump must be > 0, got %g", c.MaxJump)
	}
	return nil
}

// NoiseFilter smooths a raw score series while tracking the residual it has
// not yet applied, so sub-threshold drift accumulates instead of vanishing.
type NoiseFilter struct {
	cfg      Config
	seeded   bool
	last     float64
	residual float64
}

// New validates the configuration and returns a fresh filter.
func New(cfg Config) (*NoiseFilter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &NoiseFilter{cfg: cfg}, nil
}

// Update folds one raw score into the filter and returns the smoothed output.
// Non-finite input leaves the state untouched and returns the last output.
func (f *NoiseFilter) Update(raw float64) float64 {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return f.last
	}
	if !f.seeded {
		f.seeded = true
		f.last = raw
		f.residual = 0
		return raw
	}

	f.residual += raw - f.last
	if math.Abs(f.residual) < f.cfg.FreezeThreshold {
		return f.last
	}

	applied := f.cfg.Alpha * f.residual
	if math.Abs(applied) > f.cfg.MaxJump {
		applied = math.Copysign(f.cfg.MaxJump, applied)
	}
	f.last += applied
	// Only the input-equivalent of the applied step is consumed; any capped
	// remainder stays queued in the residual for future ticks.
	f.residual -= applied / f.cfg.Alpha
	return f.last
}

// Last returns the most recent output without mutating state.
func (f *NoiseFilter) Last() float64 { return f.last }

// Residual returns the accumulated input not yet reflected in the output.
func (f *NoiseFilter) Residual() float64 { return f.residual }

// Reset clears all state as if the filter were newly constructed.
func (f *NoiseFilter) Reset() {
	f.seeded = false
	f.last = 0
	f.residual = 0
}
