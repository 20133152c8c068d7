package fixpoint

import "math"

// CriterionConfig defines parameters for the default stopping criterion.
type CriterionConfig struct {
	// Delta is the minimum change between consecutive checks below which
	// the state counts as fixed. Zero means the 1e-6 default.
	Delta float64

	// MaxIter caps the iteration count. The criterion reports fixed as
	// soon as t exceeds it; zero therefore stops before the first update.
	MaxIter int

	// Metric measures the change between the current state and the
	// previous snapshot. Nil means Euclidean.
	Metric Metric
}

// DefaultCriterionConfig returns the standard criterion parameters.
func DefaultCriterionConfig() CriterionConfig {
	return CriterionConfig{
		Delta:   1e-6,
		MaxIter: 128,
		Metric:  Euclidean,
	}
}

// Criterion is the default stopping criterion: it halts when the state
// moved less than Delta since the previous check, or when the iteration
// count exceeds MaxIter.
//
// Criterion is a stateful predicate, not a pure one. Every IsFixed call
// overwrites the internal snapshot with the current state regardless of
// the boolean result; the criterion is a one-step-lagged delta detector
// and the unconditional snapshot is the mechanism, not an accident.
type Criterion struct {
	lastX    []float64
	lastDist float64
	delta    float64
	maxIter  int
	metric   Metric
}

// NewCriterion constructs a criterion shaped to x. The snapshot starts at
// all +Inf, so the first check always measures an infinite change and can
// only stop through the MaxIter clause.
func NewCriterion(x []float64, cfg CriterionConfig) *Criterion {
	if cfg.Delta == 0 {
		cfg.Delta = 1e-6
	}
	if cfg.Metric == nil {
		cfg.Metric = Euclidean
	}

	lastX := make([]float64, len(x))
	for i := range lastX {
		lastX[i] = math.Inf(1)
	}

	return &Criterion{
		lastX:    lastX,
		lastDist: math.Inf(1),
		delta:    cfg.Delta,
		maxIter:  cfg.MaxIter,
		metric:   cfg.Metric,
	}
}

// IsFixed reports whether the iteration should stop at state x and
// iteration t. It computes metric(x, lastX) < delta || t > maxIter, then
// unconditionally snapshots x before returning.
//
// A ShapeError is returned if x does not match the shape fixed at
// construction; the snapshot is left untouched in that case.
func (c *Criterion) IsFixed(x []float64, t int) (bool, error) {
	if len(x) != len(c.lastX) {
		return false, &ShapeError{Want: len(c.lastX), Got: len(x)}
	}

	c.lastDist = c.metric(x, c.lastX)
	fixed := c.lastDist < c.delta || t > c.maxIter
	copy(c.lastX, x)
	return fixed, nil
}

// Delta returns the minimum-change threshold.
func (c *Criterion) Delta() float64 { return c.delta }

// MaxIter returns the iteration cap.
func (c *Criterion) MaxIter() int { return c.maxIter }

// LastDistance returns the change measured by the most recent IsFixed
// call, +Inf before the first. Together with Delta it lets a caller tell
// true convergence from iteration-cap exhaustion after a run.
func (c *Criterion) LastDistance() float64 { return c.lastDist }
