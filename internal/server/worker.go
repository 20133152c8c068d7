package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cwbudde/fixpoint/internal/runner"
	"github.com/cwbudde/fixpoint/internal/store"
)

// How often running jobs persist their state and push SSE updates.
// Trace entries are written on every criterion check regardless.
const (
	checkpointInterval = 5 * time.Second
	broadcastInterval  = 250 * time.Millisecond
)

// runJob executes a solver job in the background. If st is not nil the
// job's state is checkpointed periodically and its value history is
// written to a JSONL trace.
func runJob(ctx context.Context, jm *JobManager, st *store.FSStore, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	}); err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID,
		"problem", job.Config.Problem, "method", job.Config.Method, "dim", job.Config.Dim)

	var trace *store.TraceWriter
	if st != nil {
		var err error
		trace, err = store.NewTraceWriter(st.BaseDir(), jobID, false)
		if err != nil {
			// A failed trace is not fatal, the run itself still works.
			slog.Warn("Failed to open trace writer", "job_id", jobID, "error", err)
		} else {
			defer trace.Close()
		}
	}

	var (
		lastCheckpoint = time.Now()
		lastBroadcast  time.Time
	)

	onProgress := func(p runner.Progress) {
		now := time.Now()

		// The first criterion check reports an infinite distance, which
		// JSON cannot carry. Use the same sentinel as the trace format.
		distance := p.Distance
		if math.IsInf(distance, 1) {
			distance = -1
		}

		jm.UpdateJob(jobID, func(j *Job) {
			if p.Iteration == 1 {
				j.InitialValue = p.Value
			}
			j.Iterations = p.Iteration
			j.Value = p.Value
			j.X = p.X
		})

		if trace != nil {
			entry := store.TraceEntry{
				Iteration: p.Iteration,
				Value:     p.Value,
				Distance:  p.Distance,
				Timestamp: now,
			}
			if err := trace.Write(entry); err != nil {
				slog.Warn("Failed to write trace entry", "job_id", jobID, "error", err)
			}
		}

		if now.Sub(lastBroadcast) >= broadcastInterval {
			lastBroadcast = now
			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:     jobID,
				State:     StateRunning,
				Iteration: p.Iteration,
				Value:     p.Value,
				Distance:  distance,
				Timestamp: now,
			})
		}

		if st != nil && now.Sub(lastCheckpoint) >= checkpointInterval {
			lastCheckpoint = now
			saveJobCheckpoint(jm, st, jobID)
		}
	}

	result, err := runner.Solve(ctx, job.Config, onProgress)

	jm.releaseCancel(jobID)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			markJobCancelled(jm, jobID)
		} else {
			markJobFailed(jm, jobID, err)
		}
		if trace != nil {
			trace.Flush()
		}
		return err
	}

	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.X = result.X
		j.Value = result.Value
		j.InitialValue = result.InitialValue
		j.Iterations = result.Iterations
		j.Reason = result.Reason
		j.EndTime = &endTime
	})

	if st != nil {
		saveJobCheckpoint(jm, st, jobID)
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", endTime.Sub(job.StartTime),
		"initial_value", result.InitialValue,
		"value", result.Value,
		"iterations", result.Iterations,
		"reason", result.Reason,
	)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCompleted,
		Iteration: result.Iterations,
		Value:     result.Value,
		Timestamp: time.Now(),
	})

	return nil
}

// saveJobCheckpoint snapshots a job's current state into the store.
func saveJobCheckpoint(jm *JobManager, st *store.FSStore, jobID string) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}

	if len(job.X) == 0 {
		slog.Debug("Skipping checkpoint, no state vector yet", "job_id", jobID)
		return
	}

	checkpoint := store.NewCheckpoint(jobID, job.X, job.Value, job.InitialValue, job.Iterations, job.Config)
	if err := st.SaveCheckpoint(jobID, checkpoint); err != nil {
		slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
		return
	}

	slog.Debug("Checkpoint saved", "job_id", jobID, "iteration", job.Iterations, "value", job.Value)
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateFailed,
		Timestamp: endTime,
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCancelled,
		Timestamp: endTime,
	})
	slog.Info("Job cancelled", "job_id", jobID)
}
