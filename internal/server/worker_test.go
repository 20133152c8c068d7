package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cwbudde/fixpoint/internal/store"
)

func TestRunJob_Success(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(solverConfig())

	err := runJob(context.Background(), jm, nil, job.ID)
	if err != nil {
		t.Errorf("runJob should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCompleted {
		t.Errorf("Job should be completed, got %s", updated.State)
	}
	if len(updated.X) != 2 {
		t.Errorf("Expected 2-element state vector, got %d", len(updated.X))
	}
	if updated.Value >= updated.InitialValue {
		t.Errorf("Value %v should improve on initial %v", updated.Value, updated.InitialValue)
	}
	if updated.Iterations < 2 {
		t.Errorf("Expected at least 2 iterations, got %d", updated.Iterations)
	}
	if updated.Reason == "" {
		t.Error("Reason should be set")
	}
	if updated.EndTime == nil {
		t.Error("EndTime should be set")
	}
}

func TestRunJob_UnknownMethod(t *testing.T) {
	jm := NewJobManager()
	config := solverConfig()
	config.Method = "annealing"
	job := jm.CreateJob(config)

	err := runJob(context.Background(), jm, nil, job.ID)
	if err == nil {
		t.Error("runJob should fail with unknown method")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateFailed {
		t.Errorf("Job should be failed, got %s", updated.State)
	}
	if updated.Error == "" {
		t.Error("Error message should be set")
	}
}

func TestRunJob_PersistsCheckpointAndTrace(t *testing.T) {
	dir := t.TempDir()
	st, err := store.NewFSStore(dir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	jm := NewJobManager()
	job := jm.CreateJob(solverConfig())

	if err := runJob(context.Background(), jm, st, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	checkpoint, err := st.LoadCheckpoint(job.ID)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	updated, _ := jm.GetJob(job.ID)
	if checkpoint.Value != updated.Value {
		t.Errorf("checkpoint Value = %v, job Value = %v", checkpoint.Value, updated.Value)
	}
	if checkpoint.Iteration != updated.Iterations {
		t.Errorf("checkpoint Iteration = %d, job Iterations = %d", checkpoint.Iteration, updated.Iterations)
	}

	reader, err := store.NewTraceReader(dir, job.ID)
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != updated.Iterations {
		t.Errorf("trace has %d entries for %d iterations", len(entries), updated.Iterations)
	}
	for i, e := range entries {
		if e.Iteration != i+1 {
			t.Fatalf("trace entry %d has iteration %d", i, e.Iteration)
		}
	}
}

func TestRunJob_Cancellation(t *testing.T) {
	jm := NewJobManager()
	config := solverConfig()
	// A step this small keeps the run going until cancelled.
	config.Step = 1e-9
	config.Delta = 1e-12
	config.MaxIter = 100_000_000
	job := jm.CreateJob(config)

	ctx, cancel := context.WithCancel(context.Background())
	jm.RegisterCancel(job.ID, cancel)

	done := make(chan error)
	go func() {
		done <- runJob(ctx, jm, nil, job.ID)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	err := <-done
	if !errors.Is(err, context.Canceled) {
		t.Errorf("runJob should return context.Canceled, got %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCancelled {
		t.Errorf("Job should be cancelled, got %s", updated.State)
	}
}
