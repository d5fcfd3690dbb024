package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/models"
)

// CreateRunLogDir returns a full path like
// ".patterns-tester/logs/20250423T213245_run_3c43e9f4-9026-4d04-ba06-054e8903e80a"
func CreateRunLogDir(runID uuid.UUID, startTime time.Time, command string) (string, error) {
	timestampStr := startTime.Format("20060102T150405")

	dirName := fmt.Sprintf("%s_%s_%s", timestampStr, command, runID)
	fullPath := filepath.Join(".patterns-tester", "logs", dirName)

	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create log directory '%s': %w", fullPath, err)
	}
	return fullPath, nil
}

// SaveExecutionResult stores the terminal record for a single pattern run.
// Filename: PATTERNID_JOBID.json (e.g., pattern-3_1f0b7a.json). Failures
// before a job id is assigned get a timestamp instead so same-named failures
// don't collide.
func SaveExecutionResult(logDir string, result *models.ExecutionResult) error {
	jobID := result.JobID
	if jobID == "" {
		jobID = fmt.Sprintf("FAILED_%s", time.Now().Format("150405"))
	}
	fileName := fmt.Sprintf("%s_%s.json", result.PatternID, jobID)
	filePath := filepath.Join(logDir, fileName)

	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create result file %s: %w", filePath, err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result record to %s: %w", filePath, err)
	}
	return nil
}
