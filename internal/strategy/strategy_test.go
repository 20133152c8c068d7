package strategy_test

import (
	"errors"
	"testing"

	"github.com/cwbudde/fixpoint/internal/fixpoint"
	"github.com/cwbudde/fixpoint/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sphereFn(x []float64) float64 {
	var v float64
	for i := range x {
		v += x[i] * x[i]
	}
	return v
}

func sphereGrad(x []float64) []float64 {
	g := make([]float64, len(x))
	for i := range x {
		g[i] = 2 * x[i]
	}
	return g
}

func TestDescentDirection(t *testing.T) {
	d := strategy.NewDescent(sphereFn, sphereGrad, 0.1)

	dir, err := d.Direction([]float64{1.0, -2.0})
	require.NoError(t, err)
	assert.InDelta(t, -0.2, dir[0], 1e-12)
	assert.InDelta(t, 0.4, dir[1], 1e-12)
}

func TestDescentFusedMatchesPlain(t *testing.T) {
	fused := 0
	d := strategy.NewDescent(sphereFn, sphereGrad, 0.05).
		WithFused(func(x []float64) (float64, []float64) {
			fused++
			return sphereFn(x), sphereGrad(x)
		})

	x := []float64{3.0, 1.0, -4.0}
	plain, err := d.Direction(x)
	require.NoError(t, err)

	v, dir, err := d.ValueDirection(x)
	require.NoError(t, err)
	assert.Equal(t, sphereFn(x), v)
	assert.Equal(t, plain, dir)
	assert.Equal(t, 1, fused, "fused computation should be used once")
}

func TestDescentConvergesOnSphere(t *testing.T) {
	d := strategy.NewDescent(sphereFn, sphereGrad, 0.1)
	x := []float64{5.0, -3.0}

	crit := fixpoint.NewCriterion(x, fixpoint.CriterionConfig{Delta: 1e-8, MaxIter: 500})
	got, iters, err := fixpoint.Run(d, x, crit.IsFixed)
	require.NoError(t, err)

	assert.Less(t, iters, 500)
	assert.InDelta(t, 0, got[0], 1e-5)
	assert.InDelta(t, 0, got[1], 1e-5)
}

func TestDescentDefaultStep(t *testing.T) {
	d := strategy.NewDescent(sphereFn, sphereGrad, 0)
	assert.Equal(t, 0.01, d.Step())
}

func TestMomentumIsTimeDependentOnly(t *testing.T) {
	m := strategy.NewMomentum(sphereGrad, 0.1, 0.9)

	// Momentum answers the time-dependent dispatch...
	_, ok := any(m).(fixpoint.TimeDirector)
	assert.True(t, ok)

	// ...but not the time-independent one, and exposes no objective.
	_, err := fixpoint.DirectionOf(m, []float64{1.0})
	assert.ErrorIs(t, err, fixpoint.ErrUnsupported)
	_, err = fixpoint.ObjectiveOf(m)
	assert.ErrorIs(t, err, fixpoint.ErrUnsupported)
}

func TestMomentumAccumulatesVelocity(t *testing.T) {
	m := strategy.NewMomentum(func(x []float64) []float64 {
		return []float64{1.0}
	}, 0.1, 0.5)

	// t=1: v = 1.0, dir = -0.1
	dir, err := m.DirectionAt([]float64{0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, -0.1, dir[0], 1e-12)

	// t=2: v = 0.5*1.0 + 1.0 = 1.5, dir = -0.15
	dir, err = m.DirectionAt([]float64{0}, 2)
	require.NoError(t, err)
	assert.InDelta(t, -0.15, dir[0], 1e-12)

	// t=1 again resets the velocity buffer.
	dir, err = m.DirectionAt([]float64{0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, -0.1, dir[0], 1e-12)
}

func TestMomentumConvergesOnSphere(t *testing.T) {
	m := strategy.NewMomentum(sphereGrad, 0.05, 0.5)
	x := []float64{4.0, -4.0}

	crit := fixpoint.NewCriterion(x, fixpoint.CriterionConfig{Delta: 1e-8, MaxIter: 1000})
	got, iters, err := fixpoint.Run(m, x, crit.IsFixed)
	require.NoError(t, err)

	assert.Less(t, iters, 1000)
	assert.InDelta(t, 0, got[0], 1e-4)
	assert.InDelta(t, 0, got[1], 1e-4)
}

func TestAdamFirstStep(t *testing.T) {
	// With any nonzero gradient the bias-corrected first step has
	// magnitude step * g/|g| / (1 + eps') ≈ step.
	a := strategy.NewAdam(func(x []float64) []float64 {
		return []float64{4.0}
	}, strategy.AdamConfig{Step: 0.001})

	x := []float64{1.0}
	require.NoError(t, a.Update(x, 1))

	// m = 0.1*4 = 0.4, mhat = 0.4/0.1 = 4
	// v = 0.001*16 = 0.016, vhat = 16, sqrt = 4
	// x = 1 - 0.001 * 4 / (4 + 1e-8)
	want := 1.0 - 0.001*4.0/(4.0+1e-8)
	assert.InDelta(t, want, x[0], 1e-12)
}

func TestAdamDescendsOnSphere(t *testing.T) {
	a := strategy.NewAdam(sphereGrad, strategy.AdamConfig{Step: 0.05})
	x := []float64{2.0, -1.0}
	initial := sphereFn(x)

	crit := fixpoint.NewCriterion(x, fixpoint.CriterionConfig{Delta: 1e-9, MaxIter: 2000})
	got, _, err := fixpoint.Run(a, x, crit.IsFixed)
	require.NoError(t, err)

	assert.Less(t, sphereFn(got), initial/100, "Adam should shrink the objective substantially")
}

func TestAdamDefaults(t *testing.T) {
	cfg := strategy.DefaultAdamConfig()
	assert.Equal(t, 0.001, cfg.Step)
	assert.Equal(t, 0.9, cfg.Beta1)
	assert.Equal(t, 0.999, cfg.Beta2)
	assert.Equal(t, 1e-8, cfg.Epsilon)
}

func TestMomentumRejectsShapeChange(t *testing.T) {
	m := strategy.NewMomentum(sphereGrad, 0.1, 0.9)

	_, err := m.DirectionAt([]float64{1.0, 2.0}, 1)
	require.NoError(t, err)

	// Shrinking x mid-run is a fatal precondition violation.
	_, err = m.DirectionAt([]float64{1.0}, 2)
	var serr *fixpoint.ShapeError
	assert.True(t, errors.As(err, &serr))
}
