package filter

import (
	"math"
	"testing"
)

func newTestFilter(t *testing.T, cfg Config) *NoiseFilter {
	t.Helper()
	f, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return f
}

func TestColdStartSeedsOutput(t *testing.T) {
	f := newTestFilter(t, Config{Alpha: 0.5, FreezeThreshold: 2, MaxJump: 10})
	if got := f.Update(42.0); got != 42.0 {
		t.Fatalf("expected seed value 42.0, got %g", got)
	}
	if f.Residual() != 0 {
		t.Fatalf("expected zero residual after seed, got %g", f.Residual())
	}
}

func TestConstantInputNeverMoves(t *testing.T) {
	f := newTestFilter(t, Config{Alpha: 0.5, FreezeThreshold: 2, MaxJump: 10})
	f.Update(42.0)
	for i := 0; i < 25; i++ {
		if got := f.Update(42.0); got != 42.0 {
			t.Fatalf("tick %d: expected 42.0, got %g", i, got)
		}
	}
	if f.Residual() != 0 {
		t.Fatalf("expected zero residual, got %g", f.Residual())
	}
}

func TestDeadbandAccumulatesSlowDrift(t *testing.T) {
	f := newTestFilter(t, Config{Alpha: 0.5, FreezeThreshold: 2, MaxJump: 10})
	f.Update(42.0)

	if got := f.Update(42.5); got != 42.0 {
		t.Fatalf("expected hold at 42.0, got %g", got)
	}
	if got := f.Update(43.0); got != 42.0 {
		t.Fatalf("expected hold at 42.0, got %g", got)
	}
	// Accumulated residual crosses the threshold and is applied in full.
	if got := f.Update(43.5); math.Abs(got-43.5) > 1e-12 {
		t.Fatalf("expected drift to apply at 43.5, got %g", got)
	}
	if math.Abs(f.Residual()) > 1e-12 {
		t.Fatalf("expected residual fully consumed, got %g", f.Residual())
	}
}

func TestMaxJumpKeepsRemainderQueued(t *testing.T) {
	f := newTestFilter(t, Config{Alpha: 1, FreezeThreshold: 0, MaxJump: 5})
	f.Update(0)
	if got := f.Update(20); got != 5 {
		t.Fatalf("expected capped step to 5, got %g", got)
	}
	if f.Residual() != 15 {
		t.Fatalf("expected 15 queued, got %g", f.Residual())
	}
}

func TestNonFiniteInputRejected(t *testing.T) {
	f := newTestFilter(t, Config{Alpha: 0.5, FreezeThreshold: 2, MaxJump: 10})
	f.Update(42.0)
	f.Update(43.0)
	before, residual := f.Last(), f.Residual()

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := f.Update(bad); got != before {
			t.Fatalf("expected last output %g for non-finite input, got %g", before, got)
		}
		if f.Residual() != residual {
			t.Fatalf("expected residual untouched, got %g", f.Residual())
		}
	}
}

func TestResetClearsState(t *testing.T) {
	f := newTestFilter(t, Config{Alpha: 0.5, FreezeThreshold: 2, MaxJump: 10})
	f.Update(42.0)
	f.Update(50.0)
	f.Reset()
	if got := f.Update(7.0); got != 7.0 {
		t.Fatalf("expected reseed at 7.0 after reset, got %g", got)
	}
	if f.Residual() != 0 {
		t.Fatalf("expected zero residual after reset, got %g", f.Residual())
	}
}

func TestConfigValidation(t *testing.T) {
	bad := []Config{
		{Alpha: 0, FreezeThreshold: 1, MaxJump: 1},
		{Alpha: 1.2, FreezeThreshold: 1, MaxJump: 1},
		{Alpha: 0.5, FreezeThreshold: -1, MaxJump: 1},
		{Alpha: 0.5, FreezeThreshold: 1, MaxJump: 0},
	}
	for i, cfg := range bad {
		if _, err := New(cfg); err == nil {
			t.Fatalf("case %d: expected config error for %+v", i, cfg)
		}
	}
}
