package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the set of statuses an OGC API Processes job can report.
type JobStatus string

const (
	StatusAccepted   JobStatus = "accepted"
	StatusRunning    JobStatus = "running"
	StatusSuccessful JobStatus = "successful"
	StatusFailed     JobStatus = "failed"
	StatusDismissed  JobStatus = "dismissed"

	// StatusUnknown is the safe default for status strings the server reports
	// that we don't recognize. It is never treated as terminal.
	StatusUnknown JobStatus = "unknown"
)

// ParseJobStatus maps a raw server status string onto a JobStatus,
// falling back to StatusUnknown.
func ParseJobStatus(s string) JobStatus {
	switch JobStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusAccepted:
		return StatusAccepted
	case StatusRunning:
		return StatusRunning
	case StatusSuccessful:
		return StatusSuccessful
	case StatusFailed:
		return StatusFailed
	case StatusDismissed:
		return StatusDismissed
	default:
		return StatusUnknown
	}
}

// IsTerminal reports whether the job has finished one way or the other.
// Dismissed and unknown statuses are still considered in-flight.
func (s JobStatus) IsTerminal() bool {
	return s == StatusSuccessful || s == StatusFailed
}

// PatternType classifies an application package pattern by the workflow
// construct it exercises.
type PatternType string

const (
	TypeBasicProcessing     PatternType = "basic_processing"
	TypeScatterGather       PatternType = "scatter_gather"
	TypeConditionalWorkflow PatternType = "conditional_workflow"
	TypeNestedWorkflow      PatternType = "nested_workflow"
	TypeMultipleInputs      PatternType = "multiple_inputs"
	TypeMultipleOutputs     PatternType = "multiple_outputs"
	TypeOptionalOutputs     PatternType = "optional_outputs"
	TypeComplexParameters   PatternType = "complex_parameters"
)

var patternTypes = map[string]PatternType{
	"pattern-1":  TypeBasicProcessing,
	"pattern-2":  TypeBasicProcessing,
	"pattern-3":  TypeBasicProcessing,
	"pattern-4":  TypeScatterGather,
	"pattern-5":  TypeConditionalWorkflow,
	"pattern-6":  TypeNestedWorkflow,
	"pattern-7":  TypeBasicProcessing,
	"pattern-8":  TypeOptionalOutputs,
	"pattern-9":  TypeMultipleInputs,
	"pattern-10": TypeMultipleOutputs,
	"pattern-11": TypeMultipleInputs,
	"pattern-12": TypeComplexParameters,
}

// PatternTypeOf returns the pattern type for a known pattern identifier,
// defaulting to basic processing.
func PatternTypeOf(patternID string) PatternType {
	if t, ok := patternTypes[patternID]; ok {
		return t
	}
	return TypeBasicProcessing
}

// KnownPatternIDs returns every pattern identifier this tool knows about,
// in numeric order.
func KnownPatternIDs() []string {
	ids := make([]string, 0, len(patternTypes))
	for i := 1; i <= len(patternTypes); i++ {
		ids = append(ids, fmt.Sprintf("pattern-%d", i))
	}
	return ids
}

// ProcessInfo describes a process deployed on the server. The orchestrator's
// deployed set owns these between a successful deploy and a successful cleanup.
type ProcessInfo struct {
	ProcessID  string    `json:"process_id"`
	Title      string    `json:"title,omitempty"`
	Deployed   bool      `json:"deployed"`
	DeployTime time.Time `json:"deploy_time,omitempty"`
}

// JobInfo describes one execution instance of a deployed process.
type JobInfo struct {
	JobID     string         `json:"job_id"`
	ProcessID string         `json:"process_id"`
	Status    JobStatus      `json:"status"`
	Progress  *int           `json:"progress,omitempty"`
	Message   string         `json:"message,omitempty"`
	Outputs   map[string]any `json:"outputs,omitempty"`
}

// ExecutionResult is the terminal record for one pattern run.
// Outputs are only populated when the job completed successfully.
// TimedOut marks a monitoring timeout: the job never reached a terminal
// status, which is distinct from the job failing.
type ExecutionResult struct {
	PatternID     string         `json:"pattern_id"`
	Success       bool           `json:"success"`
	TimedOut      bool           `json:"timed_out,omitempty"`
	JobID         string         `json:"job_id,omitempty"`
	ExecutionSecs float64        `json:"execution_secs,omitempty"`
	Message       string         `json:"message,omitempty"`
	Outputs       map[string]any `json:"outputs,omitempty"`
}

// TestSummary aggregates the results of a batch run in submission order.
type TestSummary struct {
	RunID         uuid.UUID          `json:"run_id"`
	StartTime     string             `json:"start_time"`
	Command       string             `json:"command"`
	ServerURL     string             `json:"server_url"`
	Total         int                `json:"total_patterns"`
	Succeeded     int                `json:"successful_patterns"`
	Failed        int                `json:"failed_patterns"`
	TotalTimeSecs float64            `json:"total_execution_secs"`
	Results       []*ExecutionResult `json:"results"`
}

// CleanupReport records the outcome of each best-effort cleanup sub-step so
// the caller can decide what mattered instead of inferring it from logs.
type CleanupReport struct {
	PatternID      string `json:"pattern_id"`
	JobsFound      int    `json:"jobs_found"`
	JobsDeleted    int    `json:"jobs_deleted"`
	ListFailed     bool   `json:"list_failed"`
	ProcessDeleted bool   `json:"process_deleted"`
	Interrupted    bool   `json:"interrupted"`
}
