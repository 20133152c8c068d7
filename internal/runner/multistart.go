package runner

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/cwbudde/fixpoint/internal/problem"
	"golang.org/x/sync/errgroup"
)

// Multistart runs the configured solve from several jittered starting
// points and returns the best result. Each run is independent and
// strictly sequential internally; only the restarts run concurrently.
func Multistart(ctx context.Context, cfg Config, restarts int, seed int64) (*Result, error) {
	if restarts <= 1 {
		return Solve(ctx, cfg, nil)
	}

	p, err := problem.ByName(cfg.Problem, cfg.Dim)
	if err != nil {
		return nil, err
	}

	base := p.Start
	if len(cfg.Start) > 0 {
		base = cfg.Start
	}

	// Pre-generate starting points so runs stay reproducible regardless
	// of scheduling. The first restart keeps the unjittered start.
	rng := rand.New(rand.NewSource(seed))
	starts := make([][]float64, restarts)
	for r := range starts {
		start := append([]float64{}, base...)
		if r > 0 {
			for i := range start {
				start[i] += rng.NormFloat64()
			}
		}
		starts[r] = start
	}

	results := make([]*Result, restarts)
	g, ctx := errgroup.WithContext(ctx)
	for r := range starts {
		r := r // per-iteration copy; required while the go directive is below 1.22
		g.Go(func() error {
			run := cfg
			run.Start = starts[r]
			res, err := Solve(ctx, run, nil)
			if err != nil {
				return fmt.Errorf("restart %d: %w", r, err)
			}
			results[r] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := results[0]
	for _, res := range results[1:] {
		if res.Value < best.Value {
			best = res
		}
	}

	slog.Info("Multistart complete", "restarts", restarts, "best_value", best.Value)
	return best, nil
}
