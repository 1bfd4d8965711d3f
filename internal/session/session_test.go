package session

import (
	"bufio"
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cconley717/Coin180/internal/analyzer"
	"github.com/cconley717/Coin180/internal/filter"
	"github.com/cconley717/Coin180/internal/pipeline"
	"github.com/cconley717/Coin180/internal/recorder"
	"github.com/cconley717/Coin180/internal/signal"
)

// fastConfig confirms flips quickly so a steady ramp emits within a few ticks.
func fastConfig() pipeline.Config {
	adaptive := analyzer.AdaptiveConfig{
		Enabled:         false,
		BaseWindow:      2,
		MinWindow:       2,
		MaxWindow:       8,
		VolatilityScale: 10,
		Sensitivity:     1,
	}
	return pipeline.Config{
		Filter: filter.Config{Alpha: 1, FreezeThreshold: 0, MaxJump: 1000},
		Trend: analyzer.TrendConfig{
			Adaptive:             adaptive,
			MinSlopeMagnitude:    0.1,
			HysteresisCount:      1,
			ConfidenceMultiplier: 1,
			ConfidenceDecayRate:  0.05,
		},
		Momentum: analyzer.MomentumConfig{
			RSIPeriod:           3,
			Adaptive:            adaptive,
			RSIWeight:           0.5,
			ZWeight:             0.5,
			BuyThreshold:        0.2,
			SellThreshold:       -0.2,
			HysteresisCount:     1,
			ConfidenceDecayRate: 0.05,
		},
		Consensus: analyzer.ConsensusConfig{
			Mode:                   analyzer.FusionWeighted,
			WindowSize:             5,
			BuyThreshold:           0.2,
			SellThreshold:          -0.2,
			SentimentBuyThreshold:  100,
			SentimentSellThreshold: -100,
		},
	}
}

func TestSessionFlowEmitsAndRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticks.jsonl")
	rec, err := recorder.NewWriter(path, map[string]string{"session": "test"})
	if err != nil {
		t.Fatalf("NewWriter error: %v", err)
	}

	var buf bytes.Buffer
	ctrl, err := New(zerolog.New(&buf), fastConfig(), WithRecorder(rec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	base := time.Unix(1700000000, 0).UTC()
	const ticks = 20
	for i := 0; i < ticks; i++ {
		ctrl.Process(signal.Tick{Score: float64(i), Ts: base.Add(time.Duration(i) * time.Second)})
	}

	events := ctrl.Ledger().Snapshot()
	if len(events) != 1 {
		t.Fatalf("expected exactly one edge-triggered signal on a steady ramp, got %d", len(events))
	}
	if events[0].Signal != signal.Buy {
		t.Fatalf("expected Buy, got %s", events[0].Signal)
	}
	if !strings.Contains(buf.String(), "signal emitted") {
		t.Fatalf("expected emission log, got %s", buf.String())
	}

	if err := rec.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open tick log: %v", err)
	}
	defer file.Close()
	var lines int
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines++
	}
	if lines != ticks+1 {
		t.Fatalf("expected session record plus %d tick lines, got %d", ticks, lines)
	}
}

func TestSessionRejectsNonFiniteTicks(t *testing.T) {
	ctrl, err := New(zerolog.Nop(), fastConfig())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	rec := ctrl.Process(signal.Tick{Score: math.NaN(), Ts: time.Now()})
	if !rec.Rejected {
		t.Fatalf("expected rejected tick")
	}
	if len(ctrl.Ledger().Snapshot()) != 0 {
		t.Fatalf("expected no ledger events from a rejected tick")
	}
}

func TestSessionRunStopsOnCancel(t *testing.T) {
	ctrl, err := New(zerolog.Nop(), fastConfig())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan signal.Tick, 4)
	ticks <- signal.Tick{Score: 5, Ts: time.Now()}
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx, ticks) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop on cancel")
	}
}

func TestLedgerSnapshotAndReset(t *testing.T) {
	ledger := NewLedger(4)
	ledger.Record(Event{Signal: signal.Buy, Confidence: 0.7, Raw: 12, Ts: time.Now()})
	ledger.Record(Event{Signal: signal.Sell, Confidence: 0.5, Raw: -20, Ts: time.Now()})

	snap := ledger.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected two events, got %d", len(snap))
	}
	snap[0].Confidence = 0
	if ledger.Snapshot()[0].Confidence != 0.7 {
		t.Fatalf("expected snapshot to be a copy")
	}

	ledger.Reset()
	if len(ledger.Snapshot()) != 0 {
		t.Fatalf("expected empty ledger after reset")
	}
}
