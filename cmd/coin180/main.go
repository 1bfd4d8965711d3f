package main

import (
	"context"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/cconley717/Coin180/internal/capture"
	"github.com/cconley717/Coin180/internal/config"
	"github.com/cconley717/Coin180/internal/heatmap"
	"github.com/cconley717/Coin180/internal/metrics"
	"github.com/cconley717/Coin180/internal/recorder"
	"github.com/cconley717/Coin180/internal/session"
	sig "github.com/cconley717/Coin180/internal/signal"
	"github.com/cconley717/Coin180/internal/util"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	_ = godotenv.Load() // best-effort

	path := defaultConfigPath
	if env := os.Getenv("COIN180_CONFIG"); env != "" {
		path = env
	}

	bootLog := util.NewLogger("info")
	cfg, err := config.Load(path)
	if err != nil {
		bootLog.Fatal().Err(err).Str("path", path).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var opts []session.Option
	if cfg.Recorder.Enabled {
		rec, err := recorder.NewWriter(cfg.Recorder.Path, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("open tick recorder")
		}
		defer rec.Close()
		opts = append(opts, session.WithRecorder(rec))
	}

	ctrl, err := session.New(log, cfg.Pipeline, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("session failed to start")
	}

	scorer, closeScorer, err := buildScorer(ctx, log, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("analyzer channel")
	}
	if closeScorer != nil {
		defer closeScorer()
	}

	source := capture.NewSource(cfg.Capture.Provider, log,
		capture.WithDir(cfg.Capture.FramesDir),
		capture.WithInterval(time.Duration(cfg.Capture.IntervalMs)*time.Millisecond),
	)
	ticks := make(chan sig.Tick, 128)
	go func() {
		if err := source.Run(ctx, scorer, ticks); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("capture source stopped")
			cancel()
		}
	}()

	log.Info().Str("provider", cfg.Capture.Provider).Msg("session started")
	if err := ctrl.Run(ctx, ticks); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("session stopped")
	}
	log.Info().Int("signals", len(ctrl.Ledger().Snapshot())).Msg("shutting down")
}

// buildScorer wires the configured analyzer transport. The stub capture
// provider never calls the scorer, so no channel is opened for it.
func buildScorer(ctx context.Context, log zerolog.Logger, cfg *config.Config) (capture.Scorer, func() error, error) {
	if cfg.Capture.Provider == "" || cfg.Capture.Provider == capture.ProviderStub {
		return nil, nil, nil
	}
	var (
		ch  heatmap.Channel
		err error
	)
	switch cfg.Analyzer.Transport {
	case "websocket":
		ch, err = heatmap.DialWebsocket(ctx, cfg.Analyzer.URL)
	default:
		ch, err = heatmap.NewStdioChannel(ctx, log, cfg.Analyzer.Command, cfg.Analyzer.Args...)
	}
	if err != nil {
		return nil, nil, err
	}
	client := heatmap.NewClient(ch, cfg.Analyzer.Options, log)
	return client, client.Close, nil
}
