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
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checkJobCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Args:  cobra.NoArgs,
	Short: "Show pattern processes and jobs on the server",
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
			cobra.CheckErr(fmt.Errorf("server %s is not reachable: %w", app.Gateway.BaseURL(), err))
		}

		fmt.Printf("Server: %s\n\n", app.Gateway.BaseURL())

		deployed := 0
		fmt.Println("Pattern processes:")
		for _, p := range processes {
			if !strings.HasPrefix(p.ID, "pattern-") {
				continue
			}
			deployed++
			line := "  " + p.ID
			if p.Title != "" && p.Title != p.ID {
				line += "  (" + p.Title + ")"
			}
			fmt.Println(line)
		}
		if deployed == 0 {
			fmt.Println("  (none)")
		}

		jobIDs, err := app.Gateway.ListJobs(ctx, "")
		if err != nil {
			fmt.Printf("\nJobs: unavailable (%v)\n", err)
			return
		}

		fmt.Printf("\nJobs on server: %d\n", len(jobIDs))
	},
}

var checkJobCmd = &cobra.Command{
	Use:   "check-job <job-id>",
	Args:  cobra.ExactArgs(1),
	Short: "Show the current status of a job",
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

		info, err := app.Gateway.GetJobStatus(ctx, args[0])
		if err != nil {
			cobra.CheckErr(err)
		}

		fmt.Printf("Job:     %s\n", info.JobID)
		if info.ProcessID != "" {
			fmt.Printf("Process: %s\n", info.ProcessID)
		}
		fmt.Printf("Status:  %s\n", info.Status)
		if info.Progress != nil {
			fmt.Printf("Progress: %d%%\n", *info.Progress)
		}
		if info.Message != "" {
			fmt.Printf("Message: %s\n", info.Message)
		}
		fmt.Printf("URL:     %s\n", app.Gateway.JobURL(info.JobID))
	},
}
