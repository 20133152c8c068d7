package fixpoint

import "math"

// Metric computes a scalar distance between two equally sized vectors.
// Implementations must be symmetric, non-negative and zero only for equal
// inputs. The criterion passes slices of identical length; a Metric does
// not need its own shape check.
type Metric func(a, b []float64) float64

// Euclidean is the default metric: the L2 norm of a-b.
func Euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Manhattan is the L1 norm of a-b.
func Manhattan(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

// Chebyshev is the L∞ norm of a-b.
func Chebyshev(a, b []float64) float64 {
	var max float64
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > max {
			max = d
		}
	}
	return max
}
