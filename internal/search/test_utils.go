package search

import (
	"math"
	"testing"
)

// countScorer scores a subset configuration by its included-dimension count.
// Deterministic and minimal, it keeps tests focused on search mechanics.
func countScorer(cfg Configuration) (float64, error) {
	return float64(cfg.IncludedCount()), nil
}

// weightScorer scores a subset configuration as the sum of per-dimension
// weights over the included dimensions, so tests can plant a known optimum.
func weightScorer(weights []float64) ScorerFunc {
	return func(cfg Configuration) (float64, error) {
		sum := 0.0
		for _, idx := range cfg.Selected() {
			sum += weights[idx]
		}
		return sum, nil
	}
}

// assertFloat64SlicesEqual checks if two float64 slices are approximately equal
func assertFloat64SlicesEqual(t *testing.T, got, want []float64, tol float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			t.Fatalf("at index %d: got %v, want %v (tolerance %v)", i, got[i], want[i], tol)
		}
	}
}
