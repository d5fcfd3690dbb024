package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/models"
)

// buildTestSummary stamps run metadata onto the orchestrator's aggregate.
func buildTestSummary(
	results *models.TestSummary,
	runID uuid.UUID,
	startTime time.Time,
	cmdName string,
	serverURL string,
) *models.TestSummary {
	results.RunID = runID
	results.StartTime = startTime.Format(time.RFC3339)
	results.Command = cmdName
	results.ServerURL = serverURL
	return results
}

// writeSummary writes the run summary to summary.json in the log directory.
// Returns an error if file operations fail.
func writeSummary(summary *models.TestSummary, logDir string) error {
	formatted, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	summaryPath := filepath.Join(logDir, "summary.json")
	f, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file %s: %w", summaryPath, err)
	}
	defer f.Close()

	if _, err := f.Write(formatted); err != nil {
		return fmt.Errorf("failed to write summary file %s: %w", summaryPath, err)
	}

	return nil
}

// printSummary renders the per-pattern outcomes as a terminal table.
func printSummary(summary *models.TestSummary) {
	fmt.Println()
	fmt.Println("Test Summary")
	fmt.Println("============")

	for _, r := range summary.Results {
		mark := "✓"
		if !r.Success {
			mark = "✖"
		}
		line := fmt.Sprintf("%s %-12s %7.1fs", mark, r.PatternID, r.ExecutionSecs)
		if r.JobID != "" {
			line += "  job=" + r.JobID
		}
		if !r.Success && r.Message != "" {
			line += "  " + r.Message
		}
		fmt.Println(line)
	}

	fmt.Println()
	fmt.Printf("%d/%d patterns successful in %.1fs\n", summary.Succeeded, summary.Total, summary.TotalTimeSecs)
}
