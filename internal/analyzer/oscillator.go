package analyzer

import (
	"fmt"
	"math"
)

const oscillatorEpsilon = 1e-8

// Oscillator is a Wilder-style momentum engine: running averages of gains and
// losses feed the classic relative-strength transform, re-centered to [-1,1].
type Oscillator struct {
	period  int
	prev    float64
	hasPrev bool
	warmed  int
	gains   float64
	losses  float64
	avgGain float64
	avgLoss float64
	seeded  bool
}

// NewOscillator returns an engine over the given averaging period.
func NewOscillator(period int) (*Oscillator, error) {
	if period < 2 {
		return nil, fmt.Errorf("oscillator: period must be >= 2, got %d", period)
	}
	return &Oscillator{period: period}, nil
}

// Update consumes one value and returns the normalized momentum in [-1,1].
// ok is false while the engine is still warming up (including the very first
// call, which only establishes the baseline).
func (o *Oscillator) Update(v float64) (value float64, ok bool) {
	if !o.hasPrev {
		o.prev = v
		o.hasPrev = true
		return 0, false
	}

	diff := v - o.prev
	o.prev = v
	var gain, loss float64
	if diff > 0 {
		gain = diff
	} else {
		loss = -diff
	}

	if !o.seeded {
		o.gains += gain
		o.losses += loss
		o.warmed++
		if o.warmed < o.period {
			return 0, false
		}
		o.avgGain = o.gains / float64(o.period)
		o.avgLoss = o.losses / float64(o.period)
		o.seeded = true
	} else {
		p := float64(o.period)
		o.avgGain = (o.avgGain*(p-1) + gain) / p
		o.avgLoss = (o.avgLoss*(p-1) + loss) / p
	}

	return o.normalized(), true
}

func (o *Oscillator) normalized() float64 {
	switch {
	case o.avgGain < oscillatorEpsilon && o.avgLoss < oscillatorEpsilon:
		return 0
	case o.avgLoss < oscillatorEpsilon:
		return 1
	case o.avgGain < oscillatorEpsilon:
		return -1
	}
	rs := o.avgGain / o.avgLoss
	rsi := 100 - 100/(1+rs)
	rsi = math.Max(0, math.Min(100, rsi))
	return (rsi - 50) / 50
}
