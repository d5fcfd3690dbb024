package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/logging"
)

func init() {
	rootCmd.AddCommand(deployCmd)
}

var deployCmd = &cobra.Command{
	Use:   "deploy <pattern-id>...",
	Args:  cobra.MinimumNArgs(1),
	Short: "Deploy patterns to the server without executing them",
	Long: `Deploy fetches each pattern's CWL workflow (using the local cache) and
registers it as a process on the server. A process that already exists on the
server counts as a successful deployment. Nothing is executed or cleaned up.`,
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
			if !app.Orch.Deploy(ctx, patternID) {
				failed++
			}
		}

		fmt.Printf("✓ %d/%d pattern(s) deployed\n", len(args)-failed, len(args))
		if failed > 0 {
			os.Exit(1)
		}
	},
}
