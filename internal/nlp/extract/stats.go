package extract

import (
	"math"
	"sort"
	"time"
)

// MedianMs returns the median of durations in whole milliseconds, averaging
// the two middle samples for even counts.  Empty input yields 0.
func MedianMs(durations []time.Duration) int {
	if len(durations) == 0 {
		return 0
	}
	xs := sortedMs(durations)
	n := len(xs)
	if n%2 == 1 {
		return int(math.Round(xs[n/2]))
	}
	return int(math.Round((xs[n/2-1] + xs[n/2]) / 2))
}

// QuantileMs returns the q-quantile (0 < q <= 1) of durations in whole
// milliseconds using the nearest-rank method, which is conservative for
// small samples.  Empty input yields 0.
func QuantileMs(durations []time.Duration, q float64) int {
	if len(durations) == 0 {
		return 0
	}
	xs := sortedMs(durations)
	k := int(math.Ceil(q * float64(len(xs))))
	if k < 1 {
		k = 1
	}
	return int(math.Round(xs[k-1]))
}

func sortedMs(durations []time.Duration) []float64 {
	xs := make([]float64, len(durations))
	for i, d := range durations {
		xs[i] = float64(d) / float64(time.Millisecond)
	}
	sort.Float64s(xs)
	return xs
}
