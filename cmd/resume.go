package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/fixpoint/internal/runner"
	"github.com/cwbudde/fixpoint/internal/store"
	"github.com/spf13/cobra"
)

var (
	resumeDataDir string
	resumeDelta   float64
	resumeMaxIter int
	resumeStep    float64
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume a solve from its checkpoint",
	Long: `Loads the checkpoint for the given job and continues the solve from
the saved state vector. Tuning parameters (step, delta, maxiter) may be
overridden; the problem, method and dimensionality are fixed by the
checkpoint. The new checkpoint overwrites the old one and trace entries
are appended.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	resumeCmd.Flags().Float64Var(&resumeDelta, "delta", 0, "Override convergence threshold (0 = keep saved)")
	resumeCmd.Flags().IntVar(&resumeMaxIter, "maxiter", 0, "Override maximum iterations (0 = keep saved)")
	resumeCmd.Flags().Float64Var(&resumeStep, "step", 0, "Override step size (0 = keep saved)")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("checkpoint is corrupted: %w", err)
	}

	cfg := checkpoint.Config
	if resumeDelta > 0 {
		cfg.Delta = resumeDelta
	}
	if resumeMaxIter > 0 {
		cfg.MaxIter = resumeMaxIter
	}
	if resumeStep > 0 {
		cfg.Step = resumeStep
	}
	if err := checkpoint.IsCompatible(cfg); err != nil {
		return fmt.Errorf("checkpoint cannot seed this run: %w", err)
	}
	cfg.Start = checkpoint.X

	slog.Info("Resuming solve",
		"job_id", jobID,
		"problem", cfg.Problem,
		"method", cfg.Method,
		"from_iteration", checkpoint.Iteration,
		"from_value", checkpoint.Value,
	)

	trace, err := store.NewTraceWriter(resumeDataDir, jobID, true)
	if err != nil {
		return fmt.Errorf("failed to open trace writer: %w", err)
	}
	defer trace.Close()

	onProgress := func(p runner.Progress) {
		entry := store.TraceEntry{
			Iteration: checkpoint.Iteration + p.Iteration,
			Value:     p.Value,
			Distance:  p.Distance,
			Timestamp: time.Now(),
		}
		if err := trace.Write(entry); err != nil {
			slog.Warn("Failed to write trace entry", "job_id", jobID, "error", err)
		}
	}

	start := time.Now()
	result, err := runner.Solve(context.Background(), cfg, onProgress)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	totalIterations := checkpoint.Iteration + result.Iterations
	updated := store.NewCheckpoint(jobID, result.X, result.Value, checkpoint.InitialValue, totalIterations, checkpoint.Config)
	if err := checkpointStore.SaveCheckpoint(jobID, updated); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Resume finished",
		"job_id", jobID,
		"elapsed", elapsed,
		"value", result.Value,
		"iterations", result.Iterations,
		"total_iterations", totalIterations,
		"reason", result.Reason,
	)

	fmt.Printf("Resumed %s: %d more iteration(s) in %s (%s)\n", jobID, result.Iterations, elapsed.Round(time.Millisecond), result.Reason)
	fmt.Printf("Value: %.6g -> %.6g\n", checkpoint.Value, result.Value)

	return nil
}
