package fixpoint

// Predicate decides whether the iteration should stop at state x and
// iteration t. Predicates may keep state and may have side effects on
// every call; Criterion.IsFixed is the canonical example.
type Predicate func(x []float64, t int) (bool, error)

// Run drives strategy against x until isFixed reports a fixed point.
//
// The loop starts at t = 1 and checks the predicate before each update, so
// a criterion already satisfied at t = 1 performs zero update steps. On
// success the returned slice is the same backing array as x, mutated in
// place, together with the iteration count at termination.
//
// strategy may be anything Step accepts: an Updater, or a direction
// strategy wrapped into the default in-place-add update rule. A nil
// isFixed means a default Criterion sized to x.
//
// Errors from strategy or predicate abort the run immediately, leaving x
// at its last successfully mutated value.
func Run(strategy any, x []float64, isFixed Predicate) ([]float64, int, error) {
	if isFixed == nil {
		isFixed = NewCriterion(x, DefaultCriterionConfig()).IsFixed
	}

	t := 1
	for {
		fixed, err := isFixed(x, t)
		if err != nil {
			return x, t, err
		}
		if fixed {
			return x, t, nil
		}
		if err := Step(strategy, x, t); err != nil {
			return x, t, err
		}
		t++
	}
}
