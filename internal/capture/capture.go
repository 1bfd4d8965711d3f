// Package capture hosts frame sources that feed the heatmap analyzer.
package capture

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cconley717/Coin180/internal/metrics"
	"github.com/cconley717/Coin180/internal/signal"
)

const (
	// ProviderStub emits deterministic synthetic scores (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderDir polls a directory for PNG frames and scores each one.
	ProviderDir = "dir"
)

// Scorer turns a captured frame into a sentiment score.
type Scorer interface {
	Score(ctx context.Context, png []byte) (float64, error)
}

// Source produces one scored tick per captured frame.
type Source struct {
	provider string
	dir      string
	interval time.Duration
	log      zerolog.Logger
	seen     map[string]struct{}
}

// Option configures Source construction parameters.
type Option func(*Source)

const defaultInterval = 2 * time.Second

// WithInterval overrides the default capture cadence.
func WithInterval(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithDir sets the directory polled by the dir provider.
func WithDir(path string) Option {
	return func(s *Source) { s.dir = path }
}

// NewSource constructs a source backed by the requested provider.
func NewSource(provider string, log zerolog.Logger, opts ...Option) *Source {
	s := &Source{
		provider: strings.ToLower(strings.TrimSpace(provider)),
		interval: defaultInterval,
		log:      log,
		seen:     make(map[string]struct{}),
	}
	if s.provider == "" {
		s.provider = ProviderStub
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run pushes ticks onto the provided channel until the context is canceled.
func (s *Source) Run(ctx context.Context, scorer Scorer, out chan<- signal.Tick) error {
	switch s.provider {
	case ProviderDir:
		return s.runDir(ctx, scorer, out)
	default:
		return s.runStub(ctx, out)
	}
}

func (s *Source) runStub(ctx context.Context, out chan<- signal.Tick) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var i int
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ts := <-ticker.C:
			i++
			// Slow sentiment swing with a small fast ripple on top.
			score := 60*math.Sin(float64(i)/40) + 8*math.Sin(float64(i)/3)
			tick := signal.Tick{Score: score, Ts: ts}
			select {
			case out <- tick:
				metrics.TicksTotal.Inc()
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (s *Source) runDir(ctx context.Context, scorer Scorer, out chan<- signal.Tick) error {
	if s.dir == "" {
		return fmt.Errorf("dir provider requires a frames directory")
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			frames, err := s.pendingFrames()
			if err != nil {
				return err
			}
			for _, path := range frames {
				png, err := os.ReadFile(path)
				if err != nil {
					s.log.Warn().Err(err).Str("frame", path).Msg("failed to read frame")
					continue
				}
				score, err := scorer.Score(ctx, png)
				if err != nil {
					s.log.Warn().Err(err).Str("frame", path).Msg("failed to score frame")
					continue
				}
				info, statErr := os.Stat(path)
				ts := time.Now()
				if statErr == nil {
					ts = info.ModTime()
				}
				select {
				case out <- signal.Tick{Score: score, Ts: ts}:
					metrics.TicksTotal.Inc()
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

// pendingFrames returns unseen PNG paths in filename order, so replayed frame
// directories feed the pipeline in capture order.
func (s *Source) pendingFrames() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read frames dir: %w", err)
	}
	var frames []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".png") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if _, ok := s.seen[path]; ok {
			continue
		}
		s.seen[path] = struct{}{}
		frames = append(frames, path)
	}
	sort.Strings(frames)
	return frames, nil
}
