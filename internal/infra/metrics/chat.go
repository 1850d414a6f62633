package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		messagesTotal,
		moodScores,
		mergesTotal,
		sessionsEnded,
	)
}

var (
	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Inbound user messages by classified crisis severity.",
		},
		[]string{"severity"},
	)

	moodScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_mood_score",
			Help:    "Distribution of per-message mood scores on the 0-10 scale.",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)

	mergesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_merges_total",
			Help: "Summary merge outcomes by mode (realtime/terminal) and success.",
		},
		[]string{"mode", "success"},
	)

	sessionsEnded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sessions_ended_total",
			Help: "Sessions explicitly terminated.",
		},
	)
)

func ObserveMessage(severity string, moodScore float64) {
	messagesTotal.WithLabelValues(norm(severity)).Inc()
	moodScores.Observe(moodScore)
}

func IncMerge(mode string, success bool) {
	mergesTotal.WithLabelValues(norm(mode), strconv.FormatBool(success)).Inc()
}

func IncSessionEnded() { sessionsEnded.Inc() }
