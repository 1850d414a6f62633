package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(dbOpLatencyMs)
}

var dbOpLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_op_latency_ms",
		Help:    "Repository operation latency in milliseconds.",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	},
	[]string{"repo", "op", "success"},
)

func ObserveDBOp(repo, op string, elapsed time.Duration, success bool) {
	dbOpLatencyMs.WithLabelValues(norm(repo), norm(op), strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}
