// Package ranking combines the per-listing signals into one final score.
// Each sub-score is exposed so the ordering can be explained and the
// weights tuned downstream.
package ranking

// MaxDistanceKm is where the linear distance decay reaches zero.
const MaxDistanceKm = 100

// Inputs are the signals for one listing. Nil pointers mean the signal is
// unknown; the sub-scores degrade to documented neutral defaults instead
// of failing.
type Inputs struct {
	DistanceKm        *float64
	RelevanceScore    float64
	TrustScore        float64
	Price             *float64
	MarketAvg         *float64
	AvailabilityScore float64
}

// Components exposes every sub-score that fed the final score.
type Components struct {
	Distance     float64 `json:"distance"`
	Relevance    float64 `json:"relevance"`
	Trust        float64 `json:"trust"`
	Price        float64 `json:"price"`
	Availability float64 `json:"availability"`
}

// Score is the weighted final score with its components.
type Score struct {
	FinalScore float64    `json:"final_score"`
	Components Components `json:"components"`
}

// Weights configures the final combination. Use DefaultWeights or
// WeightsFromMap rather than a zero value.
type Weights struct {
	Distance     float64
	Relevance    float64
	Trust        float64
	Price        float64
	Availability float64
}

// DefaultWeights sum to 1.0.
func DefaultWeights() Weights {
	return Weights{
		Distance:     0.35,
		Relevance:    0.30,
		Trust:        0.20,
		Price:        0.10,
		Availability: 0.05,
	}
}

// WeightsFromMap builds Weights from a loose configuration map. Recognized
// keys are distance, relevance, trust, price and availability; unknown
// keys are ignored and missing keys keep their default.
func WeightsFromMap(m map[string]float64) Weights {
	w := DefaultWeights()
	for k, v := range m {
		switch k {
		case "distance":
			w.Distance = v
		case "relevance":
			w.Relevance = v
		case "trust":
			w.Trust = v
		case "price":
			w.Price = v
		case "availability":
			w.Availability = v
		}
	}
	return w
}

// DistanceScore decays linearly from 1 at 0 km to 0 at MaxDistanceKm.
// Unknown distance scores 0: a listing that cannot claim locality is
// penalized, not favored.
func DistanceScore(distanceKm *float64) float64 {
	if distanceKm == nil {
		return 0
	}
	return clamp01(1 - *distanceKm/MaxDistanceKm)
}

// PriceScore compares a price against the market average. Prices above
// average lose score linearly; at or below average saturates at 1. With no
// price or no usable market average the score is a neutral 0.5 so missing
// data never biases the ranking.
func PriceScore(price, marketAvg *float64) float64 {
	if price == nil {
		return 0.5
	}
	if marketAvg == nil || *marketAvg <= 0 {
		return 0.5
	}
	ratio := (*price - *marketAvg) / *marketAvg
	return clamp01(1 - ratio)
}

// FinalScore computes the weighted sum of all sub-scores, clamped to [0,1].
func FinalScore(in Inputs, w Weights) Score {
	c := Components{
		Distance:     DistanceScore(in.DistanceKm),
		Relevance:    clamp01(in.RelevanceScore),
		Trust:        clamp01(in.TrustScore),
		Price:        PriceScore(in.Price, in.MarketAvg),
		Availability: clamp01(in.AvailabilityScore),
	}
	final := w.Distance*c.Distance +
		w.Relevance*c.Relevance +
		w.Trust*c.Trust +
		w.Price*c.Price +
		w.Availability*c.Availability

	return Score{FinalScore: clamp01(final), Components: c}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
