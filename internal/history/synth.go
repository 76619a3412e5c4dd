package history

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"coinwatch/internal/domain"
)

// Synthesize builds a plausible stand-in series when no real history is
// available. The walk is seeded from (asset id, timeframe), so the same
// inputs always produce the same series: drift follows the sign of the
// asset's 24h change and step volatility scales with its magnitude.
func Synthesize(q domain.AssetQuote, tf domain.Timeframe, now time.Time) []domain.HistoryPoint {
	n, step := tf.Sampling()
	total := n + 1

	h := fnv.New64a()
	h.Write([]byte(q.ID))
	h.Write([]byte("|"))
	h.Write([]byte(tf))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	trend := 1.0
	if q.PctChange24h < 0 {
		trend = -1.0
	}
	vol := math.Abs(q.PctChange24h) / 10 // percent per step

	end := now.Truncate(time.Minute)
	pts := make([]domain.HistoryPoint, total)
	pts[total-1] = domain.HistoryPoint{Timestamp: end.UnixMilli(), Price: q.Price}

	// Walk backwards from the live price so the series always lands on it.
	for i := total - 2; i >= 0; i-- {
		drift := trend * vol / 100
		jitter := (rng.Float64()*2 - 1) * vol / 100
		price := pts[i+1].Price / (1 + drift + jitter)
		if price <= 0 {
			price = pts[i+1].Price
		}
		pts[i] = domain.HistoryPoint{
			Timestamp: end.Add(-time.Duration(total-1-i) * step).UnixMilli(),
			Price:     price,
		}
	}
	return pts
}

// resample thins a real series down to at most total points, spaced evenly
// by index and always keeping the first and last point. Shorter series pass
// through unchanged.
func resample(points []domain.HistoryPoint, total int) []domain.HistoryPoint {
	if len(points) <= total || total < 2 {
		return points
	}
	out := make([]domain.HistoryPoint, total)
	last := len(points) - 1
	for i := 0; i < total; i++ {
		out[i] = points[i*last/(total-1)]
	}
	return out
}
