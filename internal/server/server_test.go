package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/fixpoint/internal/store"
)

func TestServer_CreateJob(t *testing.T) {
	s := NewServer(":8080", nil)

	body, _ := json.Marshal(solverConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body))
	w := httptest.NewRecorder()

	s.handleCreateJob(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}

	var job Job
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}

	// State should be pending or running (since worker starts immediately)
	if job.State != StatePending && job.State != StateRunning && job.State != StateCompleted {
		t.Errorf("Unexpected state %s", job.State)
	}
}

func TestServer_CreateJobFillsDefaults(t *testing.T) {
	s := NewServer(":8080", nil)

	// Empty config means run the standard problem with the standard method
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader("{}"))
	w := httptest.NewRecorder()

	s.handleCreateJob(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}

	var job Job
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if job.Config.Problem != "sphere" || job.Config.Method != "descent" {
		t.Errorf("defaults not applied: %+v", job.Config)
	}
	if job.Config.Dim != 2 || job.Config.MaxIter != 128 {
		t.Errorf("numeric defaults not applied: %+v", job.Config)
	}
}

func TestServer_CreateJobInvalidJSON(t *testing.T) {
	s := NewServer(":8080", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader("not json"))
	w := httptest.NewRecorder()

	s.handleCreateJob(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestServer_ListJobs(t *testing.T) {
	s := NewServer(":8080", nil)

	s.jobManager.CreateJob(solverConfig())
	s.jobManager.CreateJob(solverConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	w := httptest.NewRecorder()

	s.handleListJobs(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var jobs []*Job
	if err := json.NewDecoder(w.Body).Decode(&jobs); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(jobs) != 2 {
		t.Errorf("Expected 2 jobs, got %d", len(jobs))
	}
}

func TestServer_GetJobStatus(t *testing.T) {
	s := NewServer(":8080", nil)

	job := s.jobManager.CreateJob(solverConfig())

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/jobs/%s/status", job.ID), nil)
	w := httptest.NewRecorder()

	s.handleGetJobStatus(w, req, job.ID)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response["id"] != job.ID {
		t.Error("Response should contain job ID")
	}
	if response["state"] != string(StatePending) {
		t.Errorf("Expected pending state, got %v", response["state"])
	}
}

func TestServer_GetJobStatusNotFound(t *testing.T) {
	s := NewServer(":8080", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nope/status", nil)
	w := httptest.NewRecorder()

	s.handleGetJobStatus(w, req, "nope")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestServer_RouteDispatch(t *testing.T) {
	s := NewServer(":8080", nil)
	job := s.jobManager.CreateJob(solverConfig())

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/jobs/", http.StatusBadRequest},
		{http.MethodGet, "/api/v1/jobs/" + job.ID, http.StatusOK},
		{http.MethodGet, "/api/v1/jobs/" + job.ID + "/status", http.StatusOK},
		{http.MethodGet, "/api/v1/jobs/" + job.ID + "/bogus", http.StatusNotFound},
		{http.MethodGet, "/api/v1/jobs/" + job.ID + "/cancel", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		s.handleJobsWithID(w, req)
		if w.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, w.Code, tt.want)
		}
	}
}

func TestServer_GetTraceWithoutStore(t *testing.T) {
	s := NewServer(":8080", nil)
	job := s.jobManager.CreateJob(solverConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+job.ID+"/trace", nil)
	w := httptest.NewRecorder()

	s.handleGetJobTrace(w, req, job.ID)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 with persistence disabled, got %d", w.Code)
	}
}

func TestServer_GetTrace(t *testing.T) {
	dir := t.TempDir()
	st, err := store.NewFSStore(dir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	s := NewServer(":8080", st)
	job := s.jobManager.CreateJob(solverConfig())

	tw, err := store.NewTraceWriter(dir, job.ID, false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if err := tw.Write(store.TraceEntry{Iteration: i, Value: float64(10 - i), Timestamp: time.Now()}); err != nil {
			t.Fatalf("trace Write failed: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("trace Close failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+job.ID+"/trace", nil)
	w := httptest.NewRecorder()

	s.handleGetJobTrace(w, req, job.ID)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var entries []store.TraceEntry
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected 3 trace entries, got %d", len(entries))
	}
}

func TestServer_CancelJob(t *testing.T) {
	s := NewServer(":8080", nil)
	job := s.jobManager.CreateJob(solverConfig())

	// Not running yet, no cancel registered
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/"+job.ID+"/cancel", nil)
	w := httptest.NewRecorder()
	s.handleCancelJob(w, req, job.ID)
	if w.Code != http.StatusConflict {
		t.Errorf("Cancel of non-running job = %d, want 409", w.Code)
	}

	cancelled := false
	s.jobManager.RegisterCancel(job.ID, func() { cancelled = true })

	req = httptest.NewRequest(http.MethodPost, "/api/v1/jobs/"+job.ID+"/cancel", nil)
	w = httptest.NewRecorder()
	s.handleCancelJob(w, req, job.ID)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if !cancelled {
		t.Error("Cancel function should have been invoked")
	}
}

func TestEventBroadcaster_ReplayAndFanout(t *testing.T) {
	eb := NewEventBroadcaster()

	// An event broadcast before any subscriber is replayed on subscribe
	eb.Broadcast(ProgressEvent{JobID: "job-1", State: StateRunning, Iteration: 5, Value: 2.5})

	ch := eb.Subscribe("job-1")
	select {
	case ev := <-ch:
		if ev.Iteration != 5 {
			t.Errorf("replayed event has Iteration %d, want 5", ev.Iteration)
		}
	case <-time.After(time.Second):
		t.Fatal("no replayed event received")
	}

	ch2 := eb.Subscribe("job-1")
	// Drain ch2's replay before fanout
	<-ch2

	eb.Broadcast(ProgressEvent{JobID: "job-1", State: StateRunning, Iteration: 6, Value: 2.0})

	for i, c := range []chan ProgressEvent{ch, ch2} {
		select {
		case ev := <-c:
			if ev.Iteration != 6 {
				t.Errorf("client %d got Iteration %d, want 6", i, ev.Iteration)
			}
		case <-time.After(time.Second):
			t.Fatalf("client %d got no event", i)
		}
	}

	eb.Unsubscribe("job-1", ch)
	eb.CleanupJob("job-1")

	if _, ok := <-ch2; ok {
		t.Error("channel should be closed after CleanupJob")
	}
}
