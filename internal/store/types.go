package store

import (
	"fmt"
	"time"

	"github.com/cwbudde/fixpoint/internal/runner"
)

// JobConfig is the persisted run configuration. It aliases the runner
// config so checkpoint compatibility checks and resumed runs share one
// definition.
type JobConfig = runner.Config

// Checkpoint represents a saved solver state that can be resumed later.
// All fields are serialized to JSON.
//
// A checkpoint carries the full state vector, which is everything the
// fixed-point driver needs to continue: strategies rebuild their internal
// buffers (momentum velocity, Adam moments) from scratch on resume, so a
// resumed run is not a bit-exact continuation, but the objective value can
// only improve from the saved state onward.
type Checkpoint struct {
	// JobID is the unique identifier for this solver job.
	JobID string `json:"jobId"`

	// X is the state vector at checkpoint time.
	X []float64 `json:"x"`

	// Value is the objective value at X.
	Value float64 `json:"value"`

	// InitialValue is the objective at the original starting point,
	// kept for improvement tracking across resumes.
	InitialValue float64 `json:"initialValue"`

	// Iteration is the iteration count when this checkpoint was taken.
	Iteration int `json:"iteration"`

	// Timestamp records when this checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// Config holds the run configuration, needed for validation when
	// resuming: a checkpoint only resumes onto the same problem shape.
	Config JobConfig `json:"config"`
}

// NewCheckpoint creates a checkpoint from runtime job state.
func NewCheckpoint(jobID string, x []float64, value, initialValue float64, iteration int, config JobConfig) *Checkpoint {
	return &Checkpoint{
		JobID:        jobID,
		X:            append([]float64{}, x...),
		Value:        value,
		InitialValue: initialValue,
		Iteration:    iteration,
		Timestamp:    time.Now(),
		Config:       config,
	}
}

// CheckpointInfo contains checkpoint metadata without the state vector,
// for listing without loading full parameter data.
type CheckpointInfo struct {
	JobID     string    `json:"jobId"`
	Value     float64   `json:"value"`
	Iteration int       `json:"iteration"`
	Timestamp time.Time `json:"timestamp"`
	Problem   string    `json:"problem"`
	Method    string    `json:"method"`
	Dim       int       `json:"dim"`
}

// ToInfo converts a full Checkpoint to its metadata.
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:     c.JobID,
		Value:     c.Value,
		Iteration: c.Iteration,
		Timestamp: c.Timestamp,
		Problem:   c.Config.Problem,
		Method:    c.Config.Method,
		Dim:       c.Config.Dim,
	}
}

// Validate checks that the checkpoint has consistent data.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if len(c.X) == 0 {
		return &ValidationError{Field: "X", Reason: "cannot be empty"}
	}
	if c.Iteration < 0 {
		return &ValidationError{Field: "Iteration", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.Problem == "" {
		return &ValidationError{Field: "Config.Problem", Reason: "cannot be empty"}
	}
	if c.Config.Method == "" {
		return &ValidationError{Field: "Config.Method", Reason: "cannot be empty"}
	}
	if c.Config.Dim <= 0 {
		return &ValidationError{Field: "Config.Dim", Reason: "must be positive"}
	}
	if len(c.X) != c.Config.Dim {
		return &ValidationError{
			Field:  "X",
			Reason: fmt.Sprintf("length mismatch: got %d elements for dim %d", len(c.X), c.Config.Dim),
		}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks whether this checkpoint can seed a run with the
// given config. Problem, method and dimensionality must match; tuning
// parameters (step, delta, maxiter) may differ.
func (c *Checkpoint) IsCompatible(config JobConfig) error {
	if c.Config.Problem != config.Problem {
		return &CompatibilityError{Field: "Problem", Expected: c.Config.Problem, Actual: config.Problem}
	}
	if c.Config.Method != config.Method {
		return &CompatibilityError{Field: "Method", Expected: c.Config.Method, Actual: config.Method}
	}
	if c.Config.Dim != config.Dim {
		return &CompatibilityError{
			Field:    "Dim",
			Expected: fmt.Sprintf("%d", c.Config.Dim),
			Actual:   fmt.Sprintf("%d", config.Dim),
		}
	}
	return nil
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
