package ranking

import (
	"math"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestDistanceScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		km   *float64
		want float64
	}{
		{"unknown distance scores 0", nil, 0},
		{"at origin", floatPtr(0), 1},
		{"nearby", floatPtr(1), 0.99},
		{"mid range", floatPtr(50), 0.5},
		{"at the cap", floatPtr(100), 0},
		{"beyond the cap clamps", floatPtr(1000), 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DistanceScore(tt.km); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("DistanceScore = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("closer beats farther", func(t *testing.T) {
		t.Parallel()
		if DistanceScore(floatPtr(1)) <= DistanceScore(floatPtr(20)) {
			t.Fatal("1km should outscore 20km")
		}
	})
}

func TestPriceScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		price     *float64
		marketAvg *float64
		want      float64
	}{
		{"no price is neutral", nil, floatPtr(100), 0.5},
		{"no market average is neutral", floatPtr(80), nil, 0.5},
		{"zero market average is neutral", floatPtr(80), floatPtr(0), 0.5},
		{"at market average", floatPtr(100), floatPtr(100), 1},
		{"below average saturates", floatPtr(50), floatPtr(100), 1},
		{"fifty percent above average", floatPtr(150), floatPtr(100), 0.5},
		{"double the average floors", floatPtr(200), floatPtr(100), 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := PriceScore(tt.price, tt.marketAvg); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("PriceScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeightsFromMap(t *testing.T) {
	t.Parallel()

	t.Run("overrides recognized keys only", func(t *testing.T) {
		t.Parallel()
		w := WeightsFromMap(map[string]float64{
			"distance": 0.5,
			"sparkle":  0.9, // unrecognized
		})
		if w.Distance != 0.5 {
			t.Fatalf("Distance = %v, want 0.5", w.Distance)
		}
		def := DefaultWeights()
		if w.Relevance != def.Relevance || w.Trust != def.Trust ||
			w.Price != def.Price || w.Availability != def.Availability {
			t.Fatalf("untouched weights changed: %+v", w)
		}
	})

	t.Run("nil map keeps defaults", func(t *testing.T) {
		t.Parallel()
		if got := WeightsFromMap(nil); got != DefaultWeights() {
			t.Fatalf("got %+v, want defaults", got)
		}
	})
}

func TestFinalScore(t *testing.T) {
	t.Parallel()

	t.Run("default weights sum to one", func(t *testing.T) {
		t.Parallel()
		w := DefaultWeights()
		sum := w.Distance + w.Relevance + w.Trust + w.Price + w.Availability
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("weights sum to %v, want 1", sum)
		}
	})

	t.Run("perfect inputs score 1", func(t *testing.T) {
		t.Parallel()
		got := FinalScore(Inputs{
			DistanceKm:        floatPtr(0),
			RelevanceScore:    1,
			TrustScore:        1,
			Price:             floatPtr(100),
			MarketAvg:         floatPtr(100),
			AvailabilityScore: 1,
		}, DefaultWeights())
		if math.Abs(got.FinalScore-1) > 1e-9 {
			t.Fatalf("FinalScore = %v, want 1", got.FinalScore)
		}
	})

	t.Run("components carry the sub-scores", func(t *testing.T) {
		t.Parallel()
		got := FinalScore(Inputs{
			DistanceKm:        floatPtr(20),
			RelevanceScore:    0.6,
			TrustScore:        0.4,
			AvailabilityScore: 0.8,
		}, DefaultWeights())
		c := got.Components
		if math.Abs(c.Distance-0.8) > 1e-9 || c.Relevance != 0.6 || c.Trust != 0.4 ||
			c.Price != 0.5 || c.Availability != 0.8 {
			t.Fatalf("unexpected components: %+v", c)
		}
		want := 0.35*0.8 + 0.30*0.6 + 0.20*0.4 + 0.10*0.5 + 0.05*0.8
		if math.Abs(got.FinalScore-want) > 1e-9 {
			t.Fatalf("FinalScore = %v, want %v", got.FinalScore, want)
		}
	})
}
