package store

import (
	"errors"
	"testing"
	"time"
)

func TestCheckpointValidate(t *testing.T) {
	valid := func() *Checkpoint { return testCheckpoint("job-1") }

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid checkpoint failed validation: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Checkpoint)
		field  string
	}{
		{"empty job id", func(c *Checkpoint) { c.JobID = "" }, "JobID"},
		{"empty state", func(c *Checkpoint) { c.X = nil }, "X"},
		{"negative iteration", func(c *Checkpoint) { c.Iteration = -1 }, "Iteration"},
		{"zero timestamp", func(c *Checkpoint) { c.Timestamp = time.Time{} }, "Timestamp"},
		{"empty problem", func(c *Checkpoint) { c.Config.Problem = "" }, "Config.Problem"},
		{"empty method", func(c *Checkpoint) { c.Config.Method = "" }, "Config.Method"},
		{"bad dim", func(c *Checkpoint) { c.Config.Dim = 0 }, "Config.Dim"},
		{"state length mismatch", func(c *Checkpoint) { c.X = []float64{1.0} }, "X"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)

			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error %v is not a *ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestCheckpointIsCompatible(t *testing.T) {
	c := testCheckpoint("job-1")

	same := testConfig()
	if err := c.IsCompatible(same); err != nil {
		t.Errorf("identical config rejected: %v", err)
	}

	// Tuning parameters may change between the saved run and a resume.
	tuned := testConfig()
	tuned.Step = 0.5
	tuned.Delta = 1e-9
	tuned.MaxIter = 5000
	if err := c.IsCompatible(tuned); err != nil {
		t.Errorf("retuned config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*JobConfig)
		field  string
	}{
		{"different problem", func(cfg *JobConfig) { cfg.Problem = "rosenbrock" }, "Problem"},
		{"different method", func(cfg *JobConfig) { cfg.Method = "adam" }, "Method"},
		{"different dim", func(cfg *JobConfig) { cfg.Dim = 10 }, "Dim"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			err := c.IsCompatible(cfg)
			if err == nil {
				t.Fatal("expected compatibility error, got nil")
			}
			var ce *CompatibilityError
			if !errors.As(err, &ce) {
				t.Fatalf("error %v is not a *CompatibilityError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestNewCheckpointCopiesState(t *testing.T) {
	x := []float64{1.0, 2.0, 3.0}
	c := NewCheckpoint("job-1", x, 14.0, 75.0, 1, testConfig())

	x[0] = 99.0
	if c.X[0] != 1.0 {
		t.Error("checkpoint aliases the caller's state slice")
	}
}

func TestToInfo(t *testing.T) {
	c := testCheckpoint("job-1")
	info := c.ToInfo()

	if info.JobID != "job-1" {
		t.Errorf("JobID = %q, want job-1", info.JobID)
	}
	if info.Value != c.Value || info.Iteration != c.Iteration {
		t.Errorf("info carries Value=%v Iteration=%d, want %v/%d", info.Value, info.Iteration, c.Value, c.Iteration)
	}
	if info.Problem != "sphere" || info.Method != "descent" || info.Dim != 3 {
		t.Errorf("info config = %q/%q/%d, want sphere/descent/3", info.Problem, info.Method, info.Dim)
	}
}
