package fixpoint

// Updater is the broadest strategy capability: mutate x in place given the
// 1-based iteration index t. Time-independent strategies ignore t.
type Updater interface {
	Update(x []float64, t int) error
}

// UpdaterFunc adapts a plain function to the Updater interface.
type UpdaterFunc func(x []float64, t int) error

func (f UpdaterFunc) Update(x []float64, t int) error { return f(x, t) }

// Director is a refined Updater: it computes a perturbation vector the same
// shape as x, oriented downhill for minimization, and its induced update
// rule is "add the direction to x in place". Directions are
// time-independent by convention; see TimeDirector for the exception.
type Director interface {
	Direction(x []float64) ([]float64, error)
}

// TimeDirector is a direction strategy whose direction depends on the
// iteration index, such as a momentum method reinterpreted as a direction.
// This is deliberately the exception, not the rule: generic code treats
// directions as time-independent and special-cases this interface.
type TimeDirector interface {
	DirectionAt(x []float64, t int) ([]float64, error)
}

// Objectiver exposes a strategy's scalar objective so that collaborators
// (stepsize policies, line searches) can probe it without direction
// information.
type Objectiver interface {
	Objective(x []float64) float64
}

// ValueDirector fuses objective and direction computation into one call for
// strategies where both share intermediate work (typically one gradient
// evaluation). Implementing only ValueDirection is sufficient: the plain
// direction dispatch falls back to the fused path and discards the value.
type ValueDirector interface {
	ValueDirection(x []float64) (float64, []float64, error)
}

// HasDirection reports whether strategy can produce a direction through any
// of the direction capabilities.
func HasDirection(strategy any) bool {
	switch strategy.(type) {
	case TimeDirector, Director, ValueDirector:
		return true
	}
	return false
}

// DirectionOf resolves the time-independent direction of strategy at x.
// Dispatch order: Director, then ValueDirector with the value discarded.
func DirectionOf(strategy any, x []float64) ([]float64, error) {
	if d, ok := strategy.(Director); ok {
		return d.Direction(x)
	}
	if vd, ok := strategy.(ValueDirector); ok {
		_, dir, err := vd.ValueDirection(x)
		return dir, err
	}
	return nil, unsupported(strategy, "Direction")
}

// DirectionAt resolves the direction of strategy at x and iteration t,
// preferring a TimeDirector and falling back to the time-independent path.
func DirectionAt(strategy any, x []float64, t int) ([]float64, error) {
	if td, ok := strategy.(TimeDirector); ok {
		return td.DirectionAt(x, t)
	}
	return DirectionOf(strategy, x)
}

// ObjectiveOf returns strategy's objective curried as a unary function of
// the state. There is no fallback through the fused path: deriving values
// from ValueDirection would silently pay a direction computation per probe.
func ObjectiveOf(strategy any) (func(x []float64) float64, error) {
	if o, ok := strategy.(Objectiver); ok {
		return o.Objective, nil
	}
	return nil, unsupported(strategy, "Objective")
}

// Value evaluates strategy's objective at x.
func Value(strategy any, x []float64) (float64, error) {
	fn, err := ObjectiveOf(strategy)
	if err != nil {
		return 0, err
	}
	return fn(x), nil
}

// ValueDirectionOf resolves the fused value+direction computation,
// composing Objective and Direction when no fused implementation exists.
func ValueDirectionOf(strategy any, x []float64) (float64, []float64, error) {
	if vd, ok := strategy.(ValueDirector); ok {
		return vd.ValueDirection(x)
	}
	o, ok := strategy.(Objectiver)
	if !ok || !HasDirection(strategy) {
		return 0, nil, unsupported(strategy, "ValueDirection")
	}
	dir, err := DirectionOf(strategy, x)
	if err != nil {
		return 0, nil, err
	}
	return o.Objective(x), dir, nil
}

// Step applies one update of strategy to x in place. Updaters are invoked
// directly; direction strategies are wrapped into the default update rule
// x ← x + direction(x[, t]).
func Step(strategy any, x []float64, t int) error {
	if u, ok := strategy.(Updater); ok {
		return u.Update(x, t)
	}
	if !HasDirection(strategy) {
		return unsupported(strategy, "Update")
	}
	dir, err := DirectionAt(strategy, x, t)
	if err != nil {
		return err
	}
	if len(dir) != len(x) {
		return &ShapeError{Want: len(x), Got: len(dir)}
	}
	for i := range x {
		x[i] += dir[i]
	}
	return nil
}
