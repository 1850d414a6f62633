package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(crisisEvents, crisisResolved)
}

var (
	crisisEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crisis_events_total",
			Help: "Crisis events recorded, by severity.",
		},
		[]string{"severity"},
	)

	crisisResolved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crisis_events_resolved_total",
			Help: "Crisis events marked resolved by the review workflow.",
		},
	)
)

func IncCrisisEvent(severity string) { crisisEvents.WithLabelValues(norm(severity)).Inc() }

func IncCrisisResolved() { crisisResolved.Inc() }
