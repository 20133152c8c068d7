// Package strategy provides concrete update and direction strategies that
// plug into the fixpoint protocol: steepest descent (a fused
// value+direction strategy), heavy-ball momentum (the time-dependent
// direction exception) and Adam (a plain in-place updater).
package strategy
