package strategy

// Descent implements steepest descent: the direction at x is the negative
// gradient scaled by a fixed step size.
//
// Update rule (induced by the direction contract):
//
//	x = x - step * grad(x)
//
// Descent exposes every capability of the protocol: Objective for stepsize
// collaborators, Direction for the plain path, and ValueDirection fusing
// the objective and gradient evaluation when the problem provides a
// combined computation.
type Descent struct {
	fn     func(x []float64) float64
	grad   func(x []float64) []float64
	fnGrad func(x []float64) (float64, []float64)
	step   float64
}

// NewDescent creates a steepest-descent strategy. A non-positive step
// defaults to 0.01. fnGrad is optional; when nil the fused path evaluates
// fn and grad separately.
func NewDescent(fn func([]float64) float64, grad func([]float64) []float64, step float64) *Descent {
	if step <= 0 {
		step = 0.01
	}
	return &Descent{fn: fn, grad: grad, step: step}
}

// WithFused installs a combined value+gradient computation sharing
// intermediate work. It must agree with fn and grad pointwise.
func (d *Descent) WithFused(fnGrad func([]float64) (float64, []float64)) *Descent {
	d.fnGrad = fnGrad
	return d
}

// Step returns the step size.
func (d *Descent) Step() float64 { return d.step }

// Objective evaluates the objective at x.
func (d *Descent) Objective(x []float64) float64 { return d.fn(x) }

// Direction returns -step * grad(x).
func (d *Descent) Direction(x []float64) ([]float64, error) {
	return d.scale(d.grad(x)), nil
}

// ValueDirection computes the objective value and the descent direction in
// one call, using the fused evaluation when available.
func (d *Descent) ValueDirection(x []float64) (float64, []float64, error) {
	if d.fnGrad != nil {
		v, g := d.fnGrad(x)
		return v, d.scale(g), nil
	}
	return d.fn(x), d.scale(d.grad(x)), nil
}

func (d *Descent) scale(g []float64) []float64 {
	dir := make([]float64, len(g))
	for i := range g {
		dir[i] = -d.step * g[i]
	}
	return dir
}
