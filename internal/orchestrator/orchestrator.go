// Package orchestrator sequences the pattern lifecycle against an OGC API
// Processes server: deploy -> execute -> monitor -> cleanup, with bounded
// deploy retries, a job-completion timeout, and best-effort teardown.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/models"
	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/pattern"
	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/retry"
	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/track"
)

const (
	// pollInterval is how often Monitor asks the server for job status.
	pollInterval = 10 * time.Second

	// statusLogInterval throttles unchanged-status log lines so long jobs
	// don't flood the log; transitions are always logged immediately.
	statusLogInterval = 60 * time.Second

	deployMaxRetries = 3
	deployBaseDelay  = 1 * time.Second
)

// Gateway is the remote Process API surface the orchestrator drives.
// Implemented by ogc.Client; stubbed in tests.
type Gateway interface {
	DeployProcess(ctx context.Context, processID, cwlPath string) (*models.ProcessInfo, error)
	ExecuteProcess(ctx context.Context, processID string, parameters map[string]any) (*models.JobInfo, error)
	GetJobStatus(ctx context.Context, jobID string) (*models.JobInfo, error)
	ListJobs(ctx context.Context, processID string) ([]string, error)
	DeleteJob(ctx context.Context, jobID string) bool
	DeleteProcess(ctx context.Context, processID string) (bool, error)
	JobURL(jobID string) string
}

// Loader resolves pattern definitions (CWL location + example parameters).
type Loader interface {
	Load(patternID string) (*pattern.Definition, error)
	List() ([]string, error)
}

// Cache ensures a local copy of a pattern's CWL artifact exists.
type Cache interface {
	Ensure(ctx context.Context, patternID, url string, force bool) (string, error)
}

// Orchestrator owns the per-pattern lifecycle state for one run of the tool.
// All state is in-memory and mutated only by the lifecycle methods; the
// execution model is strictly sequential, so no locking is needed here.
// A concurrent reimplementation would have to partition these maps first.
type Orchestrator struct {
	gateway Gateway
	loader  Loader
	cache   Cache
	tracker *track.Tracker

	forceDownload bool

	deployed map[string]*models.ProcessInfo
	running  map[string]*models.JobInfo
	results  map[string]*models.ExecutionResult

	// Overridable in tests to keep polling loops fast.
	pollInterval      time.Duration
	statusLogInterval time.Duration
	deployRetry       retry.Policy

	logger zerolog.Logger
}

// New builds an orchestrator with empty lifecycle state.
func New(gateway Gateway, loader Loader, cache Cache, tracker *track.Tracker, forceDownload bool) *Orchestrator {
	if tracker == nil {
		tracker = track.New()
	}
	return &Orchestrator{
		gateway:           gateway,
		loader:            loader,
		cache:             cache,
		tracker:           tracker,
		forceDownload:     forceDownload,
		deployed:          make(map[string]*models.ProcessInfo),
		running:           make(map[string]*models.JobInfo),
		results:           make(map[string]*models.ExecutionResult),
		pollInterval:      pollInterval,
		statusLogInterval: statusLogInterval,
		deployRetry:       retry.Policy{MaxRetries: deployMaxRetries, BaseDelay: deployBaseDelay},
		logger:            log.With().Str("component", "orchestrator").Logger(),
	}
}

// Deploy resolves a pattern definition, ensures its CWL artifact is locally
// available, and deploys it to the server with bounded retries. Deploy
// failures are assumed to be transient server races; execute and cleanup are
// never auto-retried. On failure no partial state is left behind.
func (o *Orchestrator) Deploy(ctx context.Context, patternID string) bool {
	logger := o.logger.With().Str("pattern_id", patternID).Logger()

	def, err := o.loader.Load(patternID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load pattern definition")
		return false
	}

	cwlPath, err := o.cache.Ensure(ctx, patternID, def.CWLURL, o.forceDownload)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to prepare CWL artifact")
		return false
	}

	logger.Info().Msg("Deploying pattern")

	var info *models.ProcessInfo
	err = o.deployRetry.Do(ctx, logger, func() error {
		var deployErr error
		info, deployErr = o.gateway.DeployProcess(ctx, patternID, cwlPath)
		return deployErr
	})
	if err != nil {
		logger.Error().Err(err).Msg("Deployment failed")
		return false
	}

	o.deployed[patternID] = info
	logger.Info().Msg("✓ Pattern deployed")
	return true
}

// Execute starts a job for a deployed pattern and returns the job id.
// It fails fast without a remote call if the pattern is not deployed.
func (o *Orchestrator) Execute(ctx context.Context, patternID string) (string, bool) {
	logger := o.logger.With().Str("pattern_id", patternID).Logger()

	if _, ok := o.deployed[patternID]; !ok {
		logger.Error().Msg("Pattern is not deployed")
		return "", false
	}

	def, err := o.loader.Load(patternID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load pattern definition")
		return "", false
	}

	logger.Info().Msg("Executing pattern")

	job, err := o.gateway.ExecuteProcess(ctx, patternID, def.Parameters)
	if err != nil {
		logger.Error().Err(err).Msg("Execution failed")
		return "", false
	}

	o.running[patternID] = job
	return job.JobID, true
}

// Monitor polls the job for a pattern until it reaches a terminal status or
// the timeout elapses. timeout == 0 means poll forever. The running-jobs
// entry is removed on every exit path, including cancellation.
func (o *Orchestrator) Monitor(ctx context.Context, patternID string, timeout time.Duration) *models.ExecutionResult {
	logger := o.logger.With().Str("pattern_id", patternID).Logger()

	job, ok := o.running[patternID]
	if !ok {
		return o.record(&models.ExecutionResult{
			PatternID: patternID,
			Message:   "No running job for this pattern",
		})
	}

	// The job must leave the running map however monitoring ends.
	defer delete(o.running, patternID)

	jobLogger := logger.With().Str("job_id", job.JobID).Logger()

	timeoutMsg := "no timeout"
	if timeout > 0 {
		timeoutMsg = fmt.Sprintf("%s timeout", timeout)
	}
	jobLogger.Info().Msgf("Monitoring job (%s)", timeoutMsg)

	startTime := time.Now()
	lastStatus := models.JobStatus("")
	lastStatusLog := startTime

	for {
		if timeout > 0 && time.Since(startTime) >= timeout {
			elapsed := time.Since(startTime)
			jobLogger.Warn().Msg("Monitoring timeout reached. The job may still be running on the server.")
			jobLogger.Info().Msgf("Check the job status manually at: %s", o.gateway.JobURL(job.JobID))
			return o.record(&models.ExecutionResult{
				PatternID:     patternID,
				TimedOut:      true,
				JobID:         job.JobID,
				ExecutionSecs: elapsed.Seconds(),
				Message: fmt.Sprintf("Monitoring timeout after %.0fs. Job may still be running on server. Check %s",
					timeout.Seconds(), o.gateway.JobURL(job.JobID)),
			})
		}

		info, err := o.gateway.GetJobStatus(ctx, job.JobID)
		if err != nil {
			if ctx.Err() != nil {
				// Cancellation unwinds immediately; the caller reads the
				// tracker to report what was in flight.
				jobLogger.Warn().Msg("Monitoring interrupted")
				return o.record(&models.ExecutionResult{
					PatternID:     patternID,
					JobID:         job.JobID,
					ExecutionSecs: time.Since(startTime).Seconds(),
					Message:       "Monitoring interrupted. Job may still be running on server. Check " + o.gateway.JobURL(job.JobID),
				})
			}
			jobLogger.Error().Err(err).Msg("Error checking job status")
			return o.record(&models.ExecutionResult{
				PatternID:     patternID,
				JobID:         job.JobID,
				ExecutionSecs: time.Since(startTime).Seconds(),
				Message:       fmt.Sprintf("Error: %v", err),
			})
		}

		if info.Status.IsTerminal() {
			elapsed := time.Since(startTime)
			jobLogger.Info().Msgf("Job completed with status: %s after %.1fs", info.Status, elapsed.Seconds())

			result := &models.ExecutionResult{
				PatternID:     patternID,
				JobID:         job.JobID,
				Success:       info.Status == models.StatusSuccessful,
				ExecutionSecs: elapsed.Seconds(),
				Message:       fmt.Sprintf("Job completed: %s", info.Status),
			}
			if result.Success {
				result.Outputs = info.Outputs
			}
			return o.record(result)
		}

		// Log transitions immediately; unchanged statuses only once per
		// statusLogInterval.
		if info.Status != lastStatus || time.Since(lastStatusLog) >= o.statusLogInterval {
			jobLogger.Info().Msgf("Job status: %s (elapsed: %.1fs)", info.Status, time.Since(startTime).Seconds())
			lastStatus = info.Status
			lastStatusLog = time.Now()
		}

		timer := time.NewTimer(o.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			jobLogger.Warn().Msg("Monitoring interrupted")
			return o.record(&models.ExecutionResult{
				PatternID:     patternID,
				JobID:         job.JobID,
				ExecutionSecs: time.Since(startTime).Seconds(),
				Message:       "Monitoring interrupted. Job may still be running on server. Check " + o.gateway.JobURL(job.JobID),
			})
		case <-timer.C:
		}
	}
}

// Cleanup tears down a deployed pattern: delete its remote jobs (best
// effort), then the process itself. Cleaning a pattern that is not deployed
// is a no-op success, so Cleanup is idempotent. The pattern stays in the
// deployed set unless the process delete succeeds, keeping cleanup retryable.
func (o *Orchestrator) Cleanup(ctx context.Context, patternID string) bool {
	report := o.CleanupWithReport(ctx, patternID)
	return report.ProcessDeleted
}

// CleanupWithReport is Cleanup with the sub-step outcomes exposed. Policy:
// job-list and job-delete failures are logged and non-fatal; only the final
// process delete decides overall success. Cancellation mid-cleanup is caught
// here, not propagated, so a second interrupt doesn't crash uncleanly.
func (o *Orchestrator) CleanupWithReport(ctx context.Context, patternID string) *models.CleanupReport {
	logger := o.logger.With().Str("pattern_id", patternID).Logger()
	report := &models.CleanupReport{PatternID: patternID}

	if _, ok := o.deployed[patternID]; !ok {
		report.ProcessDeleted = true
		return report
	}

	logger.Info().Msg("Cleaning up pattern")

	jobIDs, err := o.gateway.ListJobs(ctx, patternID)
	if err != nil {
		// Treated as "no jobs found": an unlistable job set must not stop
		// the process delete.
		logger.Warn().Err(err).Msg("Failed to list jobs during cleanup")
		report.ListFailed = true
		jobIDs = nil
	}
	report.JobsFound = len(jobIDs)

	for _, jobID := range jobIDs {
		if ctx.Err() != nil {
			logger.Warn().Msg("Cleanup interrupted while deleting jobs")
			report.Interrupted = true
			break
		}
		if o.gateway.DeleteJob(ctx, jobID) {
			report.JobsDeleted++
		}
	}
	if report.JobsFound > 0 {
		logger.Info().Msgf("Deleted %d/%d job(s)", report.JobsDeleted, report.JobsFound)
	}

	deleted, err := o.gateway.DeleteProcess(ctx, patternID)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn().Msgf("Cleanup interrupted. Process %q may still exist on server; clean up manually with the cleanup command.", patternID)
			report.Interrupted = true
			return report
		}
		logger.Error().Err(err).Msg("Failed to delete process")
		return report
	}

	report.ProcessDeleted = deleted
	if deleted {
		delete(o.deployed, patternID)
		logger.Info().Msg("✓ Pattern cleaned up")
	}
	return report
}

// CleanupAll tears down every pattern still in the deployed set. Returns
// false if any cleanup failed.
func (o *Orchestrator) CleanupAll(ctx context.Context) bool {
	ids := make([]string, 0, len(o.deployed))
	for id := range o.deployed {
		ids = append(ids, id)
	}

	ok := true
	for _, id := range ids {
		if !o.Cleanup(ctx, id) {
			ok = false
		}
	}
	return ok
}

// record stores a result as the pattern's last outcome and returns it.
func (o *Orchestrator) record(result *models.ExecutionResult) *models.ExecutionResult {
	o.results[result.PatternID] = result
	return result
}

// DeployedCount and RunningCount expose read-only state for the status view.
func (o *Orchestrator) DeployedCount() int { return len(o.deployed) }
func (o *Orchestrator) RunningCount() int  { return len(o.running) }

// DeployedPatterns returns the identifiers currently in the deployed set.
func (o *Orchestrator) DeployedPatterns() []string {
	ids := make([]string, 0, len(o.deployed))
	for id := range o.deployed {
		ids = append(ids, id)
	}
	return ids
}

// RunningJobs returns a snapshot of pattern -> job id for in-flight jobs.
func (o *Orchestrator) RunningJobs() map[string]string {
	jobs := make(map[string]string, len(o.running))
	for id, job := range o.running {
		jobs[id] = job.JobID
	}
	return jobs
}

// LastResult returns the most recent result recorded for a pattern.
func (o *Orchestrator) LastResult(patternID string) (*models.ExecutionResult, bool) {
	r, ok := o.results[patternID]
	return r, ok
}

// ResultCount returns how many patterns have a recorded result.
func (o *Orchestrator) ResultCount() int { return len(o.results) }
