// Package problem provides benchmark objectives with analytic gradients
// for exercising the fixed-point engine from the CLI, the job server and
// the tests.
package problem

import (
	"fmt"
	"math"
)

// Problem describes an unconstrained minimization problem.
type Problem struct {
	// Name identifies the problem in the registry.
	Name string

	// Dim is the dimensionality of the state vector.
	Dim int

	// Fn evaluates the objective.
	Fn func(x []float64) float64

	// Grad evaluates the gradient.
	Grad func(x []float64) []float64

	// FnGrad evaluates objective and gradient in one pass, sharing
	// intermediate terms. Always consistent with Fn and Grad.
	FnGrad func(x []float64) (float64, []float64)

	// Start is the conventional starting point.
	Start []float64

	// Minimum is the known optimal objective value.
	Minimum float64
}

// Sphere is f(x) = Σ xᵢ², minimized at the origin.
func Sphere(dim int) Problem {
	fn := func(x []float64) float64 {
		var v float64
		for i := range x {
			v += x[i] * x[i]
		}
		return v
	}
	grad := func(x []float64) []float64 {
		g := make([]float64, len(x))
		for i := range x {
			g[i] = 2 * x[i]
		}
		return g
	}

	start := make([]float64, dim)
	for i := range start {
		start[i] = 5.0
	}

	return Problem{
		Name: "sphere",
		Dim:  dim,
		Fn:   fn,
		Grad: grad,
		FnGrad: func(x []float64) (float64, []float64) {
			var v float64
			g := make([]float64, len(x))
			for i := range x {
				v += x[i] * x[i]
				g[i] = 2 * x[i]
			}
			return v, g
		},
		Start:   start,
		Minimum: 0,
	}
}

// Rosenbrock is the classic banana valley
//
//	f(x) = Σ 100(x_{i+1} - xᵢ²)² + (1 - xᵢ)²
//
// minimized at (1, ..., 1). Its fused evaluation genuinely shares work:
// the residual terms appear in both the value and the gradient.
func Rosenbrock(dim int) Problem {
	if dim < 2 {
		dim = 2
	}

	fn := func(x []float64) float64 {
		var v float64
		for i := 0; i < len(x)-1; i++ {
			a := x[i+1] - x[i]*x[i]
			b := 1 - x[i]
			v += 100*a*a + b*b
		}
		return v
	}
	grad := func(x []float64) []float64 {
		g := make([]float64, len(x))
		for i := 0; i < len(x)-1; i++ {
			a := x[i+1] - x[i]*x[i]
			g[i] += -400*x[i]*a - 2*(1-x[i])
			g[i+1] += 200 * a
		}
		return g
	}

	start := make([]float64, dim)
	for i := range start {
		start[i] = -1.2
	}

	return Problem{
		Name: "rosenbrock",
		Dim:  dim,
		Fn:   fn,
		Grad: grad,
		FnGrad: func(x []float64) (float64, []float64) {
			var v float64
			g := make([]float64, len(x))
			for i := 0; i < len(x)-1; i++ {
				a := x[i+1] - x[i]*x[i]
				b := 1 - x[i]
				v += 100*a*a + b*b
				g[i] += -400*x[i]*a - 2*b
				g[i+1] += 200 * a
			}
			return v, g
		},
		Start:   start,
		Minimum: 0,
	}
}

// Quadratic is an axis-aligned bowl f(x) = Σ wᵢ (xᵢ - 1)² with condition
// number dim, minimized at (1, ..., 1).
func Quadratic(dim int) Problem {
	weight := func(i int) float64 { return float64(i + 1) }

	fn := func(x []float64) float64 {
		var v float64
		for i := range x {
			d := x[i] - 1
			v += weight(i) * d * d
		}
		return v
	}
	grad := func(x []float64) []float64 {
		g := make([]float64, len(x))
		for i := range x {
			g[i] = 2 * weight(i) * (x[i] - 1)
		}
		return g
	}

	start := make([]float64, dim)
	for i := range start {
		start[i] = -3.0
	}

	return Problem{
		Name: "quadratic",
		Dim:  dim,
		Fn:   fn,
		Grad: grad,
		FnGrad: func(x []float64) (float64, []float64) {
			var v float64
			g := make([]float64, len(x))
			for i := range x {
				d := x[i] - 1
				v += weight(i) * d * d
				g[i] = 2 * weight(i) * d
			}
			return v, g
		},
		Start:   start,
		Minimum: 0,
	}
}

// Names lists the registered problem names.
func Names() []string {
	return []string{"sphere", "rosenbrock", "quadratic"}
}

// ByName constructs a registered problem with the given dimensionality.
// A non-positive dim defaults to 2.
func ByName(name string, dim int) (Problem, error) {
	if dim <= 0 {
		dim = 2
	}
	switch name {
	case "sphere":
		return Sphere(dim), nil
	case "rosenbrock":
		return Rosenbrock(dim), nil
	case "quadratic":
		return Quadratic(dim), nil
	default:
		return Problem{}, fmt.Errorf("unknown problem: %s", name)
	}
}

// GradCheck compares the analytic gradient against central finite
// differences at x and returns the largest absolute deviation. Test
// helper; exported so benchmark tooling can reuse it.
func GradCheck(p Problem, x []float64, h float64) float64 {
	var worst float64
	g := p.Grad(x)
	for i := range x {
		xi := x[i]
		x[i] = xi + h
		fp := p.Fn(x)
		x[i] = xi - h
		fm := p.Fn(x)
		x[i] = xi

		fd := (fp - fm) / (2 * h)
		if d := math.Abs(fd - g[i]); d > worst {
			worst = d
		}
	}
	return worst
}
