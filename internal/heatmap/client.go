package heatmap

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cconley717/Coin180/internal/metrics"
)

// Client drives one analyzer channel. Requests are serialized so exactly one
// is in flight per channel instance.
type Client struct {
	mu   sync.Mutex
	ch   Channel
	opts Options
	log  zerolog.Logger
}

// NewClient wraps a channel with the session's analyzer options.
func NewClient(ch Channel, opts Options, log zerolog.Logger) *Client {
	return &Client{ch: ch, opts: opts, log: log}
}

// Analyze submits one PNG frame and returns the scored result. Channel
// failures and analyzer-reported errors surface to the caller; they never
// touch pipeline state.
func (c *Client) Analyze(ctx context.Context, png []byte) (*Result, error) {
	if len(png) == 0 {
		return nil, fmt.Errorf("analyze: empty frame")
	}
	req := Request{
		PNGBase64: base64.StdEncoding.EncodeToString(png),
		Options:   c.opts,
	}
	line, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode analyzer request: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.ch.Send(line); err != nil {
		metrics.AnalyzeErrors.Inc()
		return nil, err
	}
	reply, err := c.ch.Receive()
	if err != nil {
		metrics.AnalyzeErrors.Inc()
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(reply, &resp); err != nil {
		metrics.AnalyzeErrors.Inc()
		return nil, fmt.Errorf("decode analyzer response: %w", err)
	}
	if resp.Error != "" {
		metrics.AnalyzeErrors.Inc()
		return nil, fmt.Errorf("analyzer: %s", resp.Error)
	}
	if resp.Heatmap == nil {
		metrics.AnalyzeErrors.Inc()
		return nil, fmt.Errorf("analyzer response missing heatmap payload")
	}
	c.log.Debug().Float64("score", resp.Heatmap.Result.SentimentScore).Int("frameBytes", len(png)).Msg("frame analyzed")
	return &resp.Heatmap.Result, nil
}

// Score satisfies the capture layer's scorer contract: analyze one frame and
// hand back just the sentiment score.
func (c *Client) Score(ctx context.Context, png []byte) (float64, error) {
	res, err := c.Analyze(ctx, png)
	if err != nil {
		return 0, err
	}
	return res.SentimentScore, nil
}

// Close shuts the underlying channel down.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ch.Close()
}
