package fixpoint

import "fmt"

// ErrUnsupported is returned when a strategy is asked for a capability it
// does not implement. Use errors.Is(err, ErrUnsupported) to check.
var ErrUnsupported = &UnsupportedError{}

// UnsupportedError names the operation a strategy failed to provide.
// There is no silent default: asking a gradient-free strategy for a
// direction is a programming error, not a zero vector.
type UnsupportedError struct {
	Op       string // missing operation, e.g. "Direction"
	Strategy string // concrete strategy type, e.g. "*strategy.Adam"
}

func (e *UnsupportedError) Error() string {
	if e.Strategy == "" {
		return "fixpoint: strategy does not implement " + e.Op
	}
	return "fixpoint: " + e.Strategy + " does not implement " + e.Op
}

func (e *UnsupportedError) Is(target error) bool {
	_, ok := target.(*UnsupportedError)
	return ok
}

// ErrShapeMismatch is returned when a vector's length differs from the
// shape fixed at construction. Use errors.Is(err, ErrShapeMismatch).
var ErrShapeMismatch = &ShapeError{}

// ShapeError reports a state vector whose length changed mid-run.
// Dimensionality is fixed once a run starts; this is fatal.
type ShapeError struct {
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("fixpoint: shape mismatch: want %d elements, got %d", e.Want, e.Got)
}

func (e *ShapeError) Is(target error) bool {
	_, ok := target.(*ShapeError)
	return ok
}

// unsupported builds an UnsupportedError carrying the strategy's type name.
func unsupported(strategy any, op string) *UnsupportedError {
	return &UnsupportedError{Op: op, Strategy: fmt.Sprintf("%T", strategy)}
}
