package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(aiCallLatencyMs, aiFallbacks)
}

var (
	aiCallLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "Text generator call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"provider", "op", "success"},
	)

	aiFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_fallbacks_total",
			Help: "Times a deterministic fallback replaced generator output.",
		},
		[]string{"op"},
	)
)

func ObserveAICall(provider, op string, elapsed time.Duration, success bool) {
	aiCallLatencyMs.WithLabelValues(norm(provider), norm(op), strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}

func IncAIFallback(op string) { aiFallbacks.WithLabelValues(norm(op)).Inc() }
