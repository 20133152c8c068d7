package strategy

import "github.com/cwbudde/fixpoint/internal/fixpoint"

// Momentum implements the heavy-ball method reinterpreted as a direction
// strategy. Its direction depends on accumulated velocity, so it is the
// deliberate time-dependent exception to the direction contract and
// implements DirectionAt rather than Direction.
//
// Velocity update:
//
//	v = beta * v + grad(x)
//	direction = -step * v
//
// Momentum intentionally does not expose an objective; asking for one
// through the protocol yields an UnsupportedError.
type Momentum struct {
	grad     func(x []float64) []float64
	step     float64
	beta     float64
	velocity []float64
}

// NewMomentum creates a momentum strategy. A non-positive step defaults to
// 0.01 and a non-positive beta to 0.9.
func NewMomentum(grad func([]float64) []float64, step, beta float64) *Momentum {
	if step <= 0 {
		step = 0.01
	}
	if beta <= 0 {
		beta = 0.9
	}
	return &Momentum{grad: grad, step: step, beta: beta}
}

// DirectionAt returns the momentum direction at iteration t. The velocity
// buffer resets at t <= 1 so a strategy instance can be reused across runs.
func (m *Momentum) DirectionAt(x []float64, t int) ([]float64, error) {
	if t <= 1 || m.velocity == nil {
		m.velocity = make([]float64, len(x))
	}
	if len(m.velocity) != len(x) {
		return nil, &fixpoint.ShapeError{Want: len(m.velocity), Got: len(x)}
	}

	g := m.grad(x)
	dir := make([]float64, len(x))
	for i := range x {
		m.velocity[i] = m.beta*m.velocity[i] + g[i]
		dir[i] = -m.step * m.velocity[i]
	}
	return dir, nil
}
