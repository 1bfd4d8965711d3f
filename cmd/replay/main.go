// Replay feeds a recorded tick log through a fresh pipeline in the original
// order, printing the signals it would have emitted.
package main

import (
	"flag"
	"os"

	"github.com/cconley717/Coin180/internal/config"
	"github.com/cconley717/Coin180/internal/recorder"
	"github.com/cconley717/Coin180/internal/session"
	sig "github.com/cconley717/Coin180/internal/signal"
	"github.com/cconley717/Coin180/internal/util"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to session config")
	logPath := flag.String("log", "", "path to a recorded tick log (JSONL)")
	flag.Parse()

	log := util.NewConsoleLogger("info")
	if *logPath == "" {
		log.Fatal().Msg("-log is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctrl, err := session.New(log, cfg.Pipeline)
	if err != nil {
		log.Fatal().Err(err).Msg("session failed to start")
	}

	reader, err := recorder.NewReader(*logPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open tick log")
	}
	defer reader.Close()

	// Records are replayed strictly in file order; the analyzers are
	// order-sensitive.
	var ticks int
	for {
		rec, ok, err := reader.Next()
		if err != nil {
			log.Error().Err(err).Msg("read tick log")
			os.Exit(1)
		}
		if !ok {
			break
		}
		ticks++
		ctrl.Process(sig.Tick{Score: rec.Raw, Ts: rec.Ts})
	}

	events := ctrl.Ledger().Snapshot()
	log.Info().Int("ticks", ticks).Int("signals", len(events)).Msg("replay finished")
	for _, ev := range events {
		log.Info().
			Str("signal", string(ev.Signal)).
			Float64("confidence", ev.Confidence).
			Float64("raw", ev.Raw).
			Time("ts", ev.Ts).
			Msg("replayed signal")
	}
}
