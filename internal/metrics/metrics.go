package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sentiment_ticks_total", Help: "Count of sentiment scores ingested"},
	)
	TicksRejected = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sentiment_ticks_rejected_total", Help: "Non-finite sentiment scores rejected"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_emitted_total", Help: "Signals emitted by the consensus stage"},
		[]string{"signal"},
	)
	AnalyzeErrors = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "analyzer_errors_total", Help: "Heatmap analyzer request failures"},
	)
)

func init() {
	prometheus.MustRegister(TicksTotal, TicksRejected, SignalsTotal, AnalyzeErrors)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
