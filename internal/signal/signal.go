// Package signal standardizes payloads shared between the capture layer and the analysis pipeline.
package signal

import "time"

// Signal expresses the directional stance a pipeline stage has taken.
type Signal string

const (
	// Buy indicates a confirmed bullish regime.
	Buy Signal = "BUY"
	// Sell indicates a confirmed bearish regime.
	Sell Signal = "SELL"
	// Neutral indicates no actionable regime.
	Neutral Signal = "NEUTRAL"
)

// Encoded maps a signal onto the numeric scale used by consensus math (+1 buy, -1 sell, 0 neutral).
func (s Signal) Encoded() float64 {
	switch s {
	case Buy:
		return 1
	case Sell:
		return -1
	default:
		return 0
	}
}

// Result pairs a signal with a confidence value in [0,1].
type Result struct {
	Signal     Signal  `json:"signal"`
	Confidence float64 `json:"confidence"`
}

// NeutralResult is the zero-confidence neutral outcome used by every stage.
func NeutralResult() Result { return Result{Signal: Neutral} }

// Tick carries one raw sentiment score into the pipeline. Ts is passed through
// for logging and never consulted by stage logic.
type Tick struct {
	Score float64   `json:"score"`
	Ts    time.Time `json:"ts"`
}

// StageOutput couples a stage's published result with an optional debug snapshot.
type StageOutput struct {
	Result Result `json:"result"`
	Debug  any    `json:"debug,omitempty"`
}

// TickRecord is the structured per-tick output of a full pipeline pass.
type TickRecord struct {
	Seq       uint64      `json:"seq"`
	Ts        time.Time   `json:"ts"`
	Raw       float64     `json:"raw"`
	Filtered  float64     `json:"filtered"`
	Rejected  bool        `json:"rejected,omitempty"`
	Trend     StageOutput `json:"trend"`
	Momentum  StageOutput `json:"momentum"`
	Consensus StageOutput `json:"consensus"`
}

// Final returns the consensus stage's result, the only tradable output of a tick.
func (r TickRecord) Final() Result { return r.Consensus.Result }
