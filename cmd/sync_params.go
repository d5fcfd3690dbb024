package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/logging"
	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/models"
	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/notebook"
)

var (
	syncContinueOnError bool
	syncOutputDir       string
)

func init() {
	rootCmd.AddCommand(syncParamsCmd)

	syncParamsCmd.Flags().BoolVar(&syncContinueOnError, "continue-on-error", false, "Keep syncing remaining patterns after a failure")
	syncParamsCmd.Flags().StringVar(&syncOutputDir, "output-dir", "", "Directory for parameter files (defaults to --patterns-dir)")
}

var syncParamsCmd = &cobra.Command{
	Use:   "sync-params [pattern-id]...",
	Short: "Refresh pattern parameter files from the upstream notebooks",
	Long: `Sync-params downloads each pattern's Jupyter notebook from the
application package patterns repository, extracts the example 'params'
dictionary it defines, and writes it to the patterns directory as
<pattern-id>.json. With no arguments every known pattern is synced.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := logging.ConfigureGlobalLogger(Verbose, ""); err != nil {
			cobra.CheckErr(err)
		}

		patternIDs := args
		if len(patternIDs) == 0 {
			patternIDs = models.KnownPatternIDs()
		}

		outputDir := syncOutputDir
		if outputDir == "" {
			outputDir = patternsDir
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		parser := notebook.NewParser()
		results := parser.SyncAll(ctx, patternIDs, outputDir, syncContinueOnError)

		if ctx.Err() != nil {
			os.Exit(exitCodeInterrupted)
		}

		failed := 0
		for _, ok := range results {
			if !ok {
				failed++
			}
		}
		fmt.Printf("✓ %d/%d parameter file(s) written to %s\n", len(results)-failed, len(results), outputDir)
		if failed > 0 {
			os.Exit(1)
		}
	},
}
