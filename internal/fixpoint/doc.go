// Package fixpoint reduces optimization to fixed-point iteration: an update
// rule is applied to a mutable state vector until a stopping criterion
// reports that the state no longer moves.
//
// The package defines three things:
//
//   - the iteration driver (Run), which owns the loop and nothing else
//   - the stopping criterion (Criterion), a stateful predicate comparing
//     each state against a snapshot of the previous one
//   - the strategy protocol (Updater, Director, TimeDirector, Objectiver,
//     ValueDirector), the capability set a concrete algorithm implements
//
// Concrete algorithms live outside this package and plug in through the
// protocol; see internal/strategy for examples.
package fixpoint
