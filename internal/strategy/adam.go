package strategy

import (
	"math"

	"github.com/cwbudde/fixpoint/internal/fixpoint"
)

// AdamConfig holds configuration for the Adam strategy.
type AdamConfig struct {
	Step    float64 // learning rate (default 0.001)
	Beta1   float64 // first moment decay (default 0.9)
	Beta2   float64 // second moment decay (default 0.999)
	Epsilon float64 // denominator guard (default 1e-8)
}

// DefaultAdamConfig returns the standard Adam parameters.
func DefaultAdamConfig() AdamConfig {
	return AdamConfig{Step: 0.001, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8}
}

// Adam implements the Adam optimizer with bias correction as a plain
// in-place update strategy. It uses the iteration index for the bias
// correction terms, which is why it is an Updater and not a Director.
//
// Update rule:
//
//	m = beta1*m + (1-beta1)*g
//	v = beta2*v + (1-beta2)*g²
//	mhat = m / (1 - beta1^t)
//	vhat = v / (1 - beta2^t)
//	x = x - step * mhat / (sqrt(vhat) + eps)
type Adam struct {
	grad func(x []float64) []float64
	cfg  AdamConfig
	m, v []float64
}

// NewAdam creates an Adam strategy. Zero config fields take their
// defaults.
func NewAdam(grad func([]float64) []float64, cfg AdamConfig) *Adam {
	def := DefaultAdamConfig()
	if cfg.Step <= 0 {
		cfg.Step = def.Step
	}
	if cfg.Beta1 <= 0 {
		cfg.Beta1 = def.Beta1
	}
	if cfg.Beta2 <= 0 {
		cfg.Beta2 = def.Beta2
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = def.Epsilon
	}
	return &Adam{grad: grad, cfg: cfg}
}

// Update applies one Adam step to x in place. Moment buffers reset at
// t <= 1 so the strategy can be reused across runs.
func (a *Adam) Update(x []float64, t int) error {
	if t <= 1 || a.m == nil {
		a.m = make([]float64, len(x))
		a.v = make([]float64, len(x))
	}
	if len(a.m) != len(x) {
		return &fixpoint.ShapeError{Want: len(a.m), Got: len(x)}
	}

	g := a.grad(x)
	c1 := 1 - math.Pow(a.cfg.Beta1, float64(t))
	c2 := 1 - math.Pow(a.cfg.Beta2, float64(t))

	for i := range x {
		a.m[i] = a.cfg.Beta1*a.m[i] + (1-a.cfg.Beta1)*g[i]
		a.v[i] = a.cfg.Beta2*a.v[i] + (1-a.cfg.Beta2)*g[i]*g[i]

		mhat := a.m[i] / c1
		vhat := a.v[i] / c2
		x[i] -= a.cfg.Step * mhat / (math.Sqrt(vhat) + a.cfg.Epsilon)
	}
	return nil
}
