package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/logging"
	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/ogc"
)

func init() {
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(cleanupAllCmd)
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup <pattern-id>...",
	Args:  cobra.MinimumNArgs(1),
	Short: "Delete patterns and their jobs from the server",
	Long: `Cleanup removes each named pattern from the server: its jobs are deleted
first (best effort, failures are logged and skipped), then the process itself.
Use this after an interrupted or --no-cleanup run left processes behind.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := logging.ConfigureGlobalLogger(Verbose, ""); err != nil {
			cobra.CheckErr(err)
		}

		app, err := buildAppContext()
		if err != nil {
			cobra.CheckErr(err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		failed := 0
		for _, patternID := range args {
			if ctx.Err() != nil {
				os.Exit(exitCodeInterrupted)
			}
			if !cleanupServerPattern(ctx, app.Gateway, patternID) {
				failed++
			}
		}

		fmt.Printf("✓ %d/%d pattern(s) cleaned up\n", len(args)-failed, len(args))
		if failed > 0 {
			os.Exit(1)
		}
	},
}

var cleanupAllCmd = &cobra.Command{
	Use:   "cleanup-all",
	Args:  cobra.NoArgs,
	Short: "Delete every pattern process found on the server",
	Long: `Cleanup-all lists the processes on the server and removes every one whose
identifier looks like a pattern (pattern-<n>), along with its jobs.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := logging.ConfigureGlobalLogger(Verbose, ""); err != nil {
			cobra.CheckErr(err)
		}

		app, err := buildAppContext()
		if err != nil {
			cobra.CheckErr(err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		processes, err := app.Gateway.ListProcesses(ctx)
		if err != nil {
			cobra.CheckErr(fmt.Errorf("failed to list server processes: %w", err))
		}

		var patternIDs []string
		for _, p := range processes {
			if strings.HasPrefix(p.ID, "pattern-") {
				patternIDs = append(patternIDs, p.ID)
			}
		}

		if len(patternIDs) == 0 {
			fmt.Println("No pattern processes found on the server.")
			return
		}

		fmt.Printf("↪ cleaning up %d pattern process(es) ...\n", len(patternIDs))

		failed := 0
		for _, patternID := range patternIDs {
			if ctx.Err() != nil {
				os.Exit(exitCodeInterrupted)
			}
			if !cleanupServerPattern(ctx, app.Gateway, patternID) {
				failed++
			}
		}

		fmt.Printf("✓ %d/%d pattern(s) cleaned up\n", len(patternIDs)-failed, len(patternIDs))
		if failed > 0 {
			os.Exit(1)
		}
	},
}

// cleanupServerPattern tears down a pattern directly on the server, with no
// local deployment state involved. Job deletion is best effort; only the
// process delete decides success.
func cleanupServerPattern(ctx context.Context, gateway *ogc.Client, patternID string) bool {
	jobIDs, err := gateway.ListJobs(ctx, patternID)
	if err != nil {
		// Unlistable jobs must not stop the process delete.
		jobIDs = nil
	}
	for _, jobID := range jobIDs {
		if ctx.Err() != nil {
			return false
		}
		gateway.DeleteJob(ctx, jobID)
	}

	deleted, err := gateway.DeleteProcess(ctx, patternID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to delete process %q: %v\n", patternID, err)
		return false
	}
	return deleted
}
