package fixpoint

import (
	"math"
	"testing"
)

func TestMetrics(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{4, 2, -1}

	tests := []struct {
		name   string
		metric Metric
		want   float64
	}{
		{"euclidean", Euclidean, 5},
		{"manhattan", Manhattan, 7},
		{"chebyshev", Chebyshev, 4},
	}

	for _, tc := range tests {
		if got := tc.metric(a, b); got != tc.want {
			t.Errorf("%s(a, b): got %v, want %v", tc.name, got, tc.want)
		}
		// Symmetry.
		if got := tc.metric(b, a); got != tc.want {
			t.Errorf("%s(b, a): got %v, want %v", tc.name, got, tc.want)
		}
		// Zero only for equal inputs.
		if got := tc.metric(a, a); got != 0 {
			t.Errorf("%s(a, a): got %v, want 0", tc.name, got)
		}
	}
}

func TestMetricsAgainstInfiniteSnapshot(t *testing.T) {
	// The criterion compares the first state against all +Inf; every
	// metric must report an infinite distance for it.
	inf := []float64{math.Inf(1), math.Inf(1)}
	x := []float64{1, 2}

	for name, m := range map[string]Metric{
		"euclidean": Euclidean,
		"manhattan": Manhattan,
		"chebyshev": Chebyshev,
	} {
		if got := m(x, inf); !math.IsInf(got, 1) {
			t.Errorf("%s against +Inf snapshot: got %v, want +Inf", name, got)
		}
	}
}
