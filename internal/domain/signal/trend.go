package signal

import "mitra-support/internal/domain/model"

// TrendThreshold is the mean-difference a score sequence must move before it
// counts as improving or declining. Applied uniformly to both the realtime
// window and the full-history basis.
const TrendThreshold = 1.0

// Trend classifies an ordered score sequence, newest first. Fewer than three
// scores is always stable. The sequence splits into a recent bucket of
// ceil(n/3) scores and the equal-sized prior bucket immediately after it;
// the buckets' means are compared against TrendThreshold.
func Trend(scoresNewestFirst []float64) model.MoodTrend {
	n := len(scoresNewestFirst)
	if n < 3 {
		return model.TrendStable
	}

	bucket := (n + 2) / 3 // ceil(n/3)
	recent := scoresNewestFirst[:bucket]
	prior := scoresNewestFirst[bucket:]
	if len(prior) > bucket {
		prior = prior[:bucket]
	}
	if len(prior) == 0 {
		return model.TrendStable
	}

	diff := mean(recent) - mean(prior)
	switch {
	case diff > TrendThreshold:
		return model.TrendImproving
	case diff < -TrendThreshold:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

func mean(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
