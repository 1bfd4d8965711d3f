package analyzer

import "github.com/cconley717/Coin180/internal/signal"

// direction classifies one observation before hysteresis is applied.
type direction int

const (
	dirFlat direction = 0
	dirUp   direction = 1
	dirDown direction = -1
)

func (d direction) signal() signal.Signal {
	switch d {
	case dirUp:
		return signal.Buy
	case dirDown:
		return signal.Sell
	default:
		return signal.Neutral
	}
}

// debounce is the hysteresis state machine shared by the trend and momentum
// stages. A directional flip is confirmed only after `need` consecutive
// observations agreeing on the same pending candidate; disagreement restarts
// the count at 1, a flat observation resets it to 0.
type debounce struct {
	need      int
	confirmed direction
	pending   direction
	agreement int
}

// clearPending drops any flip in progress without touching the confirmed
// direction. Used for flat observations and for observations that agree with
// the already-confirmed direction.
func (d *debounce) clearPending() {
	d.pending = dirFlat
	d.agreement = 0
}

// observe feeds one non-flat observation that differs from the confirmed
// direction and reports whether the flip was confirmed this tick.
func (d *debounce) observe(dir direction) bool {
	if dir == d.pending {
		d.agreement++
	} else {
		d.pending = dir
		d.agreement = 1
	}
	if d.agreement >= d.need {
		d.confirmed = dir
		d.clearPending()
		return true
	}
	return false
}

// confirm force-sets the confirmed direction, used when hysteresis is disabled.
func (d *debounce) confirm(dir direction) {
	d.confirmed = dir
	d.clearPending()
}
