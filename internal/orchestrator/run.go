package orchestrator

import (
	"context"
	"time"

	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/models"
)

// RunSingle drives the complete lifecycle for one pattern:
// deploy -> execute -> monitor -> conditional cleanup.
//
// Cleanup is only attempted when something was deployed, and is skipped when
// monitoring timed out (noted in the result message rather than silently).
// A failed cleanup is appended to the message as a warning, never escalated.
func (o *Orchestrator) RunSingle(ctx context.Context, patternID string, cleanup bool, timeout time.Duration) *models.ExecutionResult {
	o.logger.Info().Str("pattern_id", patternID).Msg("Starting complete execution of pattern")

	// On cancellation the tracker must keep the in-flight ids: the command's
	// interrupt reporter reads them after the run unwinds to tell the operator
	// what to clean up manually.
	o.tracker.SetPattern(patternID)
	defer func() {
		if ctx.Err() == nil {
			o.tracker.Clear()
		}
	}()

	if !o.Deploy(ctx, patternID) {
		return o.record(&models.ExecutionResult{
			PatternID: patternID,
			Message:   "Deployment failed",
		})
	}

	jobID, ok := o.Execute(ctx, patternID)
	if !ok {
		// Deploy succeeded, so there is something to tear down.
		if cleanup {
			o.Cleanup(ctx, patternID)
		}
		return o.record(&models.ExecutionResult{
			PatternID: patternID,
			Message:   "Execution failed",
		})
	}

	o.tracker.SetJob(jobID)
	result := o.Monitor(ctx, patternID, timeout)

	if ctx.Err() != nil {
		// Interrupted mid-monitor: leave cleanup to the caller, which
		// reports the tracker snapshot for manual follow-up.
		return result
	}
	o.tracker.ClearJob()

	if cleanup {
		if result.TimedOut {
			// Deleting the process out from under a possibly-still-running
			// job would orphan it with no local handle to stop it.
			o.logger.Info().Str("pattern_id", patternID).Msg("Skipping cleanup - job may still be running")
			result.Message += " (Cleanup skipped - job may still be running)"
		} else if !o.Cleanup(ctx, patternID) {
			result.Message += " (Warning: cleanup failed)"
		}
	}

	return result
}

// RunMultiple executes patterns strictly in order, one at a time, and
// aggregates the outcomes. A pattern failure never aborts the batch; the
// caller decides what to do with the aggregate. Only context cancellation
// stops the loop early.
func (o *Orchestrator) RunMultiple(ctx context.Context, patternIDs []string, cleanup bool, timeout time.Duration) *models.TestSummary {
	results := make([]*models.ExecutionResult, 0, len(patternIDs))
	startTime := time.Now()

	for _, patternID := range patternIDs {
		if ctx.Err() != nil {
			break
		}
		o.logger.Info().Str("pattern_id", patternID).Msg("Processing pattern")
		results = append(results, o.RunSingle(ctx, patternID, cleanup, timeout))
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}

	summary := &models.TestSummary{
		Total:     len(results),
		Succeeded: succeeded,
		Failed:    len(results) - succeeded,
		// Measured around the whole loop rather than summed per pattern to
		// avoid compounding rounding.
		TotalTimeSecs: time.Since(startTime).Seconds(),
		Results:       results,
	}

	o.logger.Info().Msgf("Tests completed: %d/%d successful", succeeded, len(results))
	return summary
}

// RunAll executes every pattern with a local parameter file, in numeric
// order.
func (o *Orchestrator) RunAll(ctx context.Context, cleanup bool, timeout time.Duration) (*models.TestSummary, error) {
	patternIDs, err := o.loader.List()
	if err != nil {
		return nil, err
	}

	o.logger.Info().Msgf("Executing %d patterns: %v", len(patternIDs), patternIDs)
	return o.RunMultiple(ctx, patternIDs, cleanup, timeout), nil
}
