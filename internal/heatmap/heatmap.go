// Package heatmap talks to the out-of-process image-analysis service that
// turns a market heatmap frame into a sentiment score in [-100,100].
package heatmap

import "encoding/json"

// ShadeWeights weight the light/medium/dark shade buckets in the score.
type ShadeWeights struct {
	Light  float64 `json:"light" yaml:"light"`
	Medium float64 `json:"medium" yaml:"medium"`
	Dark   float64 `json:"dark" yaml:"dark"`
}

// Options are the analyzer knobs, passed through opaquely per request.
type Options struct {
	ThresholdBlurSigma    float64      `json:"thresholdBlurSigma" yaml:"threshold_blur_sigma"`
	MinSaturation         float64      `json:"minSaturation" yaml:"min_saturation"`
	AutoTuneMinSaturation bool         `json:"autoTuneMinSaturation" yaml:"auto_tune_min_saturation"`
	PixelStep             int          `json:"pixelStep" yaml:"pixel_step"`
	NeighborFilter        bool         `json:"neighborFilter" yaml:"neighbor_filter"`
	NeighborAgreeMin      int          `json:"neighborAgreeMin" yaml:"neighbor_agree_min"`
	MinShadeShare         float64      `json:"minShadeShare" yaml:"min_shade_share"`
	ShadeGamma            float64      `json:"shadeGamma" yaml:"shade_gamma"`
	CoverageFloor         float64      `json:"coverageFloor" yaml:"coverage_floor"`
	Weights               ShadeWeights `json:"weights" yaml:"weights"`
}

// Request is one line sent to the analyzer service.
type Request struct {
	PNGBase64 string  `json:"pngBase64"`
	Options   Options `json:"options"`
}

// Result is the scored outcome of one analyzed frame. Only the sentiment
// score drives the pipeline; the rest is kept raw for logging.
type Result struct {
	SentimentScore float64         `json:"sentimentScore"`
	Counts         json.RawMessage `json:"counts,omitempty"`
	RawCounts      json.RawMessage `json:"rawCounts,omitempty"`
	Percentages    json.RawMessage `json:"percentages,omitempty"`
	Thresholds     json.RawMessage `json:"thresholds,omitempty"`
}

// Payload is the analyzer's per-frame envelope.
type Payload struct {
	Result Result          `json:"result"`
	Debug  json.RawMessage `json:"debug,omitempty"`
}

// Response is one line received from the analyzer service.
type Response struct {
	Heatmap *Payload `json:"heatmap,omitempty"`
	Error   string   `json:"error,omitempty"`
}
