package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/logging"
)

// exitCodeInterrupted is the conventional exit status for SIGINT termination.
const exitCodeInterrupted = 130

var (
	noCleanup       bool
	monitorTimeout  int
	continueOnError bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&noCleanup, "no-cleanup", false, "Leave the process and jobs on the server after the run")
	runCmd.Flags().IntVar(&monitorTimeout, "timeout", 1800, "Job monitoring timeout in seconds (0 = no timeout)")
}

var runCmd = &cobra.Command{
	Use:   "run <pattern-id>",
	Args:  cobra.ExactArgs(1),
	Short: "Run the complete lifecycle for one pattern",
	Long: `Run deploys a pattern's CWL workflow, executes it with its example
parameters, monitors the job to completion, and cleans up the process and its
jobs afterwards.

Cleanup is skipped with --no-cleanup, and also when monitoring times out,
since the job may still be running on the server. Progress is shown in the
terminal and detailed logs are written to '.patterns-tester/logs/'.`,
	Run: func(cmd *cobra.Command, args []string) {
		runPatterns("run", args)
	},
}

// runPatterns is the shared driver behind run, run-multiple, and run-all.
// An empty patternIDs means "every pattern with a parameter file".
func runPatterns(cmdName string, patternIDs []string) {
	app, err := buildAppContext()
	if err != nil {
		cobra.CheckErr(err)
	}

	// --- Initialize run context and logging ---

	runID := uuid.New()
	runStartTime := time.Now()

	logDir, err := logging.CreateRunLogDir(runID, runStartTime, cmdName)
	if err != nil {
		cobra.CheckErr(fmt.Errorf("failed to create log directory for run %s: %w", runID.String(), err))
	}

	logFilePath := filepath.Join(logDir, "run.log")
	if err := logging.ConfigureGlobalLogger(Verbose, logFilePath); err != nil {
		cobra.CheckErr(fmt.Errorf("failed to initialize logging: %w", err))
	}

	logCtx := log.With().Str("run_id", runID.String()).Logger()
	logCtx.Info().Msgf("Logs will be stored in: %s", logDir)

	if len(patternIDs) == 0 {
		patternIDs, err = app.Loader.List()
		if err != nil {
			cobra.CheckErr(fmt.Errorf("failed to list patterns in %q: %w", app.Config.PatternsDir, err))
		}
		if len(patternIDs) == 0 {
			cobra.CheckErr(fmt.Errorf("no pattern parameter files found in %q", app.Config.PatternsDir))
		}
	}

	fmt.Printf("↪ testing %d pattern(s) against %s\n", len(patternIDs), app.Gateway.BaseURL())

	// --- Run with interrupt handling ---

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeout := time.Duration(monitorTimeout) * time.Second
	results := app.Orch.RunMultiple(ctx, patternIDs, !noCleanup, timeout)

	for _, result := range results.Results {
		if err := logging.SaveExecutionResult(logDir, result); err != nil {
			logCtx.Error().Err(err).Str("pattern_id", result.PatternID).Msg("Failed to write result record")
		}
	}

	// --- Construct and write run summary ---

	summary := buildTestSummary(results, runID, runStartTime, cmdName, app.Gateway.BaseURL())
	if err := writeSummary(summary, logDir); err != nil {
		logCtx.Error().Err(err).Msg("Failed to write summary.json")
	}

	if ctx.Err() != nil {
		reportInterrupt(app)
		os.Exit(exitCodeInterrupted)
	}

	printSummary(summary)
	fmt.Printf("✓ Run complete, logs saved to: %s\n", logDir)

	if summary.Failed > 0 && !continueOnError {
		os.Exit(1)
	}
}

// reportInterrupt tells the operator what was in flight when the run was
// interrupted, so they can clean up manually.
func reportInterrupt(app *appContext) {
	patternID, jobID := app.Tracker.Snapshot()

	fmt.Println()
	fmt.Println("✖ Run interrupted.")
	if patternID != "" {
		fmt.Printf("  Pattern %q may still be deployed on the server.\n", patternID)
		fmt.Printf("  Clean up with: patterns-tester cleanup %s\n", patternID)
	}
	if jobID != "" {
		fmt.Printf("  Job %s may still be running: %s\n", jobID, app.Gateway.JobURL(jobID))
	}
}

func init() {
	rootCmd.AddCommand(runMultipleCmd)
	rootCmd.AddCommand(runAllCmd)

	for _, c := range []*cobra.Command{runMultipleCmd, runAllCmd} {
		c.Flags().BoolVar(&noCleanup, "no-cleanup", false, "Leave processes and jobs on the server after the run")
		c.Flags().IntVar(&monitorTimeout, "timeout", 1800, "Per-job monitoring timeout in seconds (0 = no timeout)")
		c.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Exit 0 even if some patterns failed")
	}
}

var runMultipleCmd = &cobra.Command{
	Use:   "run-multiple <pattern-id>...",
	Args:  cobra.MinimumNArgs(1),
	Short: "Run the complete lifecycle for several patterns in order",
	Long: `Run-multiple executes the given patterns strictly in order, one at a time.
A pattern failure never aborts the batch; the summary reports every outcome
and the exit code reflects whether all patterns succeeded (see
--continue-on-error). Only an interrupt stops the batch early.`,
	Run: func(cmd *cobra.Command, args []string) {
		runPatterns("run-multiple", args)
	},
}

var runAllCmd = &cobra.Command{
	Use:   "run-all",
	Args:  cobra.NoArgs,
	Short: "Run the complete lifecycle for every local pattern",
	Long: `Run-all executes every pattern that has a parameter file in the patterns
directory, in numeric order, with the same batch semantics as run-multiple.`,
	Run: func(cmd *cobra.Command, args []string) {
		runPatterns("run-all", nil)
	},
}
