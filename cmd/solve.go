package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/cwbudde/fixpoint/internal/runner"
	"github.com/cwbudde/fixpoint/internal/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	problemName string
	methodName  string
	dim         int
	step        float64
	delta       float64
	maxIter     int
	metricName  string
	restarts    int
	seed        int64
	dataDir     string
	noProgress  bool
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run a solver to its fixed point",
	Long: `Runs the chosen strategy on a benchmark problem until the stopping
criterion reports a fixed point. With --data-dir the final state is
checkpointed and the value history written as a JSONL trace.`,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&problemName, "problem", "sphere", "Benchmark problem: sphere, rosenbrock, quadratic")
	solveCmd.Flags().StringVar(&methodName, "method", "descent", "Strategy: descent, momentum, adam")
	solveCmd.Flags().IntVar(&dim, "dim", 2, "Problem dimensionality")
	solveCmd.Flags().Float64Var(&step, "step", 0.01, "Step size")
	solveCmd.Flags().Float64Var(&delta, "delta", 1e-6, "Convergence threshold on successive iterates")
	solveCmd.Flags().IntVar(&maxIter, "maxiter", 128, "Maximum number of iterations")
	solveCmd.Flags().StringVar(&metricName, "metric", "euclidean", "Distance metric: euclidean, manhattan, chebyshev")
	solveCmd.Flags().IntVar(&restarts, "restarts", 1, "Number of jittered restarts (best result wins)")
	solveCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for restart jitter")
	solveCmd.Flags().StringVar(&dataDir, "data-dir", "", "Persist checkpoint and trace under this directory")
	solveCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress spinner")

	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg := runner.Config{
		Problem: problemName,
		Method:  methodName,
		Dim:     dim,
		Step:    step,
		Delta:   delta,
		MaxIter: maxIter,
		Metric:  metricName,
	}

	slog.Info("Starting solve", "problem", cfg.Problem, "method", cfg.Method, "dim", cfg.Dim, "restarts", restarts)

	var (
		checkpointStore *store.FSStore
		trace           *store.TraceWriter
		jobID           string
		err             error
	)
	if dataDir != "" {
		checkpointStore, err = store.NewFSStore(dataDir)
		if err != nil {
			return fmt.Errorf("failed to create checkpoint store: %w", err)
		}
		jobID = uuid.New().String()
		// Traces only make sense for a single run; restarts interleave.
		if restarts <= 1 {
			trace, err = store.NewTraceWriter(dataDir, jobID, false)
			if err != nil {
				return fmt.Errorf("failed to create trace writer: %w", err)
			}
			defer trace.Close()
		}
	}

	var spin *spinner.Spinner
	if !noProgress {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = " solving..."
		spin.Start()
		defer spin.Stop()
	}

	onProgress := func(p runner.Progress) {
		if spin != nil {
			spin.Suffix = fmt.Sprintf(" iter %d  value %.6g", p.Iteration, p.Value)
		}
		if trace != nil {
			entry := store.TraceEntry{
				Iteration: p.Iteration,
				Value:     p.Value,
				Distance:  p.Distance,
				Timestamp: time.Now(),
			}
			if err := trace.Write(entry); err != nil {
				slog.Warn("Failed to write trace entry", "error", err)
			}
		}
	}

	start := time.Now()
	var result *runner.Result
	if restarts > 1 {
		result, err = runner.Multistart(context.Background(), cfg, restarts, seed)
	} else {
		result, err = runner.Solve(context.Background(), cfg, onProgress)
	}
	elapsed := time.Since(start)

	if spin != nil {
		spin.Stop()
		spin = nil
	}
	if err != nil {
		return err
	}

	if checkpointStore != nil {
		checkpoint := store.NewCheckpoint(jobID, result.X, result.Value, result.InitialValue, result.Iterations, cfg)
		if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
			return fmt.Errorf("failed to save checkpoint: %w", err)
		}
		fmt.Printf("Checkpoint saved as job %s\n", jobID)
	}

	slog.Info("Solve finished",
		"elapsed", elapsed,
		"initial_value", result.InitialValue,
		"value", result.Value,
		"iterations", result.Iterations,
		"reason", result.Reason,
	)

	fmt.Printf("Converged after %d iteration(s) in %s (%s)\n", result.Iterations, elapsed.Round(time.Millisecond), result.Reason)
	fmt.Printf("Value: %.6g -> %.6g\n", result.InitialValue, result.Value)
	fmt.Printf("X: %v\n", result.X)

	return nil
}
