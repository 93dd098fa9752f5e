// Package market summarizes observed prices for a service or category.
// Aggregation is passive: callers hand in whatever observations they have
// and get a robust min/avg/max back.
package market

import (
	"math"
	"sort"
	"time"
)

// Summary is the outlier-filtered price summary. Min, Avg and Max are
// computed over the retained sample only; rejected outliers never widen
// the reported range.
type Summary struct {
	Min         float64   `json:"min_price"`
	Avg         float64   `json:"avg_price"`
	Max         float64   `json:"max_price"`
	SampleSize  int       `json:"sample_size"`
	LastUpdated time.Time `json:"last_updated"`
}

// Aggregate trims IQR outliers from prices and summarizes the rest. A nil
// return means no usable observations, which is not an error.
func Aggregate(prices []float64) *Summary {
	clean := excludeOutliers(prices)
	if len(clean) == 0 {
		return nil
	}

	sum := 0.0
	min := clean[0]
	max := clean[0]
	for _, v := range clean {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	return &Summary{
		Min:         min,
		Avg:         sum / float64(len(clean)),
		Max:         max,
		SampleSize:  len(clean),
		LastUpdated: time.Now().UTC(),
	}
}

// excludeOutliers keeps values within [Q1 - 1.5*IQR, Q3 + 1.5*IQR]. For
// small samples the interpolated quartiles collapse toward the values
// themselves, so nothing is dropped.
func excludeOutliers(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	var kept []float64
	for _, v := range sorted {
		if v >= lower && v <= upper {
			kept = append(kept, v)
		}
	}
	return kept
}

// quantile is the standard linearly-interpolated quantile over a sorted
// slice: idx = (n-1)*p, interpolating between the bracketing elements.
func quantile(sorted []float64, p float64) float64 {
	idx := float64(len(sorted)-1) * p
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo]*(float64(hi)-idx) + sorted[hi]*(idx-float64(lo))
}
