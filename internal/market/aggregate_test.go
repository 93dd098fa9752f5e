package market

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAggregateDropsOutliers(t *testing.T) {
	t.Parallel()

	got := Aggregate([]float64{100, 110, 95, 105, 1000})
	if got == nil {
		t.Fatal("expected a summary, got nil")
	}
	if got.SampleSize != 4 {
		t.Fatalf("SampleSize = %d, want 4 (outlier retained)", got.SampleSize)
	}
	if !almostEqual(got.Min, 95) || !almostEqual(got.Max, 110) {
		t.Fatalf("range = [%v, %v], want [95, 110]", got.Min, got.Max)
	}
	if !almostEqual(got.Avg, 102.5) {
		t.Fatalf("Avg = %v, want 102.5", got.Avg)
	}
	if got.LastUpdated.IsZero() {
		t.Fatal("LastUpdated not set")
	}
}

func TestAggregateSmallSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prices []float64
		size   int
		avg    float64
	}{
		{"single observation", []float64{150}, 1, 150},
		{"two observations kept", []float64{100, 200}, 2, 150},
		{"identical observations", []float64{50, 50, 50}, 3, 50},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Aggregate(tt.prices)
			if got == nil {
				t.Fatal("expected a summary, got nil")
			}
			if got.SampleSize != tt.size {
				t.Fatalf("SampleSize = %d, want %d", got.SampleSize, tt.size)
			}
			if !almostEqual(got.Avg, tt.avg) {
				t.Fatalf("Avg = %v, want %v", got.Avg, tt.avg)
			}
			if got.Min > got.Avg || got.Avg > got.Max {
				t.Fatalf("ordering violated: min=%v avg=%v max=%v", got.Min, got.Avg, got.Max)
			}
		})
	}
}

func TestAggregateEmpty(t *testing.T) {
	t.Parallel()

	if got := Aggregate(nil); got != nil {
		t.Fatalf("Aggregate(nil) = %+v, want nil", got)
	}
	if got := Aggregate([]float64{}); got != nil {
		t.Fatalf("Aggregate(empty) = %+v, want nil", got)
	}
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	prices := []float64{300, 100, 200}
	Aggregate(prices)
	if prices[0] != 300 || prices[1] != 100 || prices[2] != 200 {
		t.Fatalf("input reordered: %v", prices)
	}
}
