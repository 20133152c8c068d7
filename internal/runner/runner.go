// Package runner wires a benchmark problem, a strategy and a stopping
// criterion into one solver run, and layers progress reporting and
// cancellation on top of the engine by wrapping the stopping predicate.
package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cwbudde/fixpoint/internal/fixpoint"
	"github.com/cwbudde/fixpoint/internal/problem"
	"github.com/cwbudde/fixpoint/internal/strategy"
)

// Termination reasons reported in Result.Reason.
const (
	ReasonConverged = "converged"
	ReasonMaxIter   = "maxiter"
)

// Config holds the parameters of one solver run.
type Config struct {
	Problem string  `json:"problem"` // sphere, rosenbrock, quadratic
	Method  string  `json:"method"`  // descent, momentum, adam
	Dim     int     `json:"dim"`
	Step    float64 `json:"step,omitempty"`
	Delta   float64 `json:"delta,omitempty"`
	MaxIter int     `json:"maxIter,omitempty"`
	Metric  string  `json:"metric,omitempty"` // euclidean, manhattan, chebyshev

	// Start overrides the problem's conventional starting point, e.g.
	// when resuming from a checkpoint.
	Start []float64 `json:"start,omitempty"`
}

// DefaultConfig returns the standard run parameters.
func DefaultConfig() Config {
	return Config{
		Problem: "sphere",
		Method:  "descent",
		Dim:     2,
		Step:    0.01,
		Delta:   1e-6,
		MaxIter: 128,
		Metric:  "euclidean",
	}
}

// Result holds the outcome of one solver run.
type Result struct {
	X            []float64 `json:"x"`
	Value        float64   `json:"value"`
	InitialValue float64   `json:"initialValue"`
	Iterations   int       `json:"iterations"`
	Reason       string    `json:"reason"`
}

// Progress is reported once per stopping-criterion check. X is a copy
// and safe to retain.
type Progress struct {
	Iteration int
	X         []float64
	Value     float64
	Distance  float64
}

// ProgressFunc receives progress updates during a run. It is called from
// the solver goroutine; implementations must not block.
type ProgressFunc func(Progress)

// Solve runs the configured problem/method pair to a fixed point.
//
// Cancellation and progress are implemented the way the engine intends:
// the driver sees an augmented stopping predicate that first checks ctx,
// then delegates to the criterion, then reports.
func Solve(ctx context.Context, cfg Config, onProgress ProgressFunc) (*Result, error) {
	p, err := problem.ByName(cfg.Problem, cfg.Dim)
	if err != nil {
		return nil, err
	}

	strat, err := buildStrategy(cfg, p)
	if err != nil {
		return nil, err
	}

	metric, err := metricByName(cfg.Metric)
	if err != nil {
		return nil, err
	}

	x := append([]float64{}, p.Start...)
	if len(cfg.Start) > 0 {
		if len(cfg.Start) != p.Dim {
			return nil, &fixpoint.ShapeError{Want: p.Dim, Got: len(cfg.Start)}
		}
		x = append([]float64{}, cfg.Start...)
	}

	maxIter := cfg.MaxIter
	if maxIter == 0 {
		maxIter = DefaultConfig().MaxIter
	}
	crit := fixpoint.NewCriterion(x, fixpoint.CriterionConfig{
		Delta:   cfg.Delta,
		MaxIter: maxIter,
		Metric:  metric,
	})

	initialValue := p.Fn(x)
	slog.Info("Starting solve",
		"problem", p.Name,
		"method", cfg.Method,
		"dim", p.Dim,
		"initial_value", initialValue,
	)

	isFixed := func(x []float64, t int) (bool, error) {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		fixed, err := crit.IsFixed(x, t)
		if err != nil {
			return false, err
		}
		if onProgress != nil {
			onProgress(Progress{
				Iteration: t,
				X:         append([]float64{}, x...),
				Value:     p.Fn(x),
				Distance:  crit.LastDistance(),
			})
		}
		return fixed, nil
	}

	x, iters, err := fixpoint.Run(strat, x, isFixed)
	if err != nil {
		return nil, err
	}

	reason := ReasonMaxIter
	if crit.LastDistance() < crit.Delta() {
		reason = ReasonConverged
	}

	value := p.Fn(x)
	slog.Info("Solve complete",
		"problem", p.Name,
		"method", cfg.Method,
		"iterations", iters,
		"value", value,
		"reason", reason,
	)

	return &Result{
		X:            x,
		Value:        value,
		InitialValue: initialValue,
		Iterations:   iters,
		Reason:       reason,
	}, nil
}

// buildStrategy constructs the strategy named in cfg for problem p.
func buildStrategy(cfg Config, p problem.Problem) (any, error) {
	switch cfg.Method {
	case "descent", "":
		return strategy.NewDescent(p.Fn, p.Grad, cfg.Step).WithFused(p.FnGrad), nil
	case "momentum":
		return strategy.NewMomentum(p.Grad, cfg.Step, 0.9), nil
	case "adam":
		return strategy.NewAdam(p.Grad, strategy.AdamConfig{Step: cfg.Step}), nil
	default:
		return nil, fmt.Errorf("unknown method: %s", cfg.Method)
	}
}

// metricByName resolves a metric name, defaulting to euclidean.
func metricByName(name string) (fixpoint.Metric, error) {
	switch name {
	case "euclidean", "":
		return fixpoint.Euclidean, nil
	case "manhattan":
		return fixpoint.Manhattan, nil
	case "chebyshev":
		return fixpoint.Chebyshev, nil
	default:
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
}
