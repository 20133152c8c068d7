package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server status or specific job",
	Long: `Queries the server for job status information.
If no job-id is provided, lists all jobs.
If job-id is provided, shows detailed status for that job.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		// List all jobs
		url := fmt.Sprintf("%s/api/v1/jobs", serverURL)
		return listJobs(url)
	}

	jobID := args[0]
	url := fmt.Sprintf("%s/api/v1/jobs/%s/status", serverURL, jobID)
	return getJobStatus(url, jobID)
}

func listJobs(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var jobs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		config, _ := job["config"].(map[string]interface{})
		fmt.Printf("Job ID: %s\n", job["id"])
		fmt.Printf("  State: %s\n", job["state"])
		if config != nil {
			fmt.Printf("  Problem: %s (%v-dimensional)\n", config["problem"], config["dim"])
			fmt.Printf("  Method: %s\n", config["method"])
		}
		if value, ok := job["value"].(float64); ok && value != 0 {
			fmt.Printf("  Value: %.6g -> %.6g\n", job["initialValue"], value)
		}
		fmt.Println()
	}

	return nil
}

func getJobStatus(url, jobID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Job: %s\n", status["id"])
	fmt.Printf("State: %s\n", status["state"])
	fmt.Println()

	if config, ok := status["config"].(map[string]interface{}); ok {
		fmt.Println("Configuration:")
		fmt.Printf("  Problem: %s\n", config["problem"])
		fmt.Printf("  Method: %s\n", config["method"])
		fmt.Printf("  Dimension: %v\n", config["dim"])
		fmt.Printf("  Step: %v\n", config["step"])
		fmt.Printf("  Delta: %v\n", config["delta"])
		fmt.Printf("  Max iterations: %v\n", config["maxIter"])
		fmt.Println()
	}

	fmt.Println("Progress:")
	fmt.Printf("  Iterations: %v\n", status["iterations"])
	if initial, ok := status["initialValue"].(float64); ok && initial != 0 {
		fmt.Printf("  Initial value: %.6g\n", initial)
	}
	if value, ok := status["value"].(float64); ok {
		fmt.Printf("  Current value: %.6g\n", value)
	}
	if reason, ok := status["reason"].(string); ok && reason != "" {
		fmt.Printf("  Termination: %s\n", reason)
	}

	if elapsed, ok := status["elapsed"].(float64); ok {
		d := time.Duration(elapsed * float64(time.Second))
		fmt.Printf("  Elapsed: %s\n", d.Round(time.Millisecond))
	}

	if errMsg, ok := status["error"].(string); ok && errMsg != "" {
		fmt.Printf("\nError: %s\n", errMsg)
	}

	return nil
}
