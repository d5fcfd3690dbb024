package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/console"
	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/logging"
	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/models"
	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/pattern"
	"github.com/ZOO-Project/ogc-app-package-patterns-tester/types"
)

var listProcessesJSON bool

func init() {
	rootCmd.AddCommand(listPatternsCmd)
	rootCmd.AddCommand(listProcessesCmd)

	listProcessesCmd.Flags().BoolVar(&listProcessesJSON, "json", false, "Emit the process list as JSON")
}

var listPatternsCmd = &cobra.Command{
	Use:   "list-patterns",
	Args:  cobra.NoArgs,
	Short: "List local patterns and their workflow types",
	Run: func(cmd *cobra.Command, args []string) {
		loader := &pattern.Loader{Dir: patternsDir}
		ids, err := loader.List()
		if err != nil {
			cobra.CheckErr(fmt.Errorf("failed to list patterns in %q: %w", patternsDir, err))
		}

		if len(ids) == 0 {
			fmt.Printf("No pattern parameter files found in %s.\n", patternsDir)
			fmt.Println("Run 'patterns-tester sync-params' to fetch them.")
			return
		}

		for _, id := range ids {
			fmt.Printf("%-12s %s\n", id, models.PatternTypeOf(id))
		}
	},
}

var listProcessesCmd = &cobra.Command{
	Use:   "list-processes",
	Args:  cobra.NoArgs,
	Short: "List all processes deployed on the server",
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

		style := types.StyleHuman
		if Verbose {
			style = types.StyleHumanVerbose
		}
		if listProcessesJSON {
			style = types.StyleMachineJSON
		}
		ui := console.NewLogger(style)

		ui.Json(processes)
		for _, p := range processes {
			line := p.ID
			if p.Version != "" {
				line += "  v" + p.Version
			}
			if p.Title != "" && p.Title != p.ID {
				line += "  " + p.Title
			}
			ui.Info("%s", line)
			if p.Description != "" {
				ui.Verbose("  %s", p.Description)
			}
		}
		ui.Info("\n%d process(es) on %s", len(processes), app.Gateway.BaseURL())
	},
}
