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

func init() {
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download [pattern-id]...",
	Short: "Download CWL workflows into the local cache",
	Long: `Download fetches pattern CWL workflows from the application package
patterns repository into the cache directory, without touching the server.
With no arguments every known pattern is fetched. Already cached workflows
are skipped unless --force-download is set.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := logging.ConfigureGlobalLogger(Verbose, ""); err != nil {
			cobra.CheckErr(err)
		}

		patternIDs := args
		if len(patternIDs) == 0 {
			patternIDs = models.KnownPatternIDs()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cache := &pattern.Cache{Dir: cacheDir}
		style := types.StyleHuman
		if Verbose {
			style = types.StyleHumanVerbose
		}
		ui := console.NewLogger(style)

		failed := 0
		for _, patternID := range patternIDs {
			if ctx.Err() != nil {
				os.Exit(exitCodeInterrupted)
			}

			ui.StartSpinner(fmt.Sprintf("Downloading workflow for %s ...", patternID))
			path, err := cache.Ensure(ctx, patternID, pattern.CWLURL(patternID), forceDownload)
			ui.StopSpinner()

			if err != nil {
				ui.Error("failed to download %s: %v", patternID, err)
				failed++
				continue
			}
			ui.Info("✓ %s", patternID)
			ui.Verbose("  cached at %s", path)
		}

		fmt.Printf("✓ %d/%d workflow(s) available in %s\n", len(patternIDs)-failed, len(patternIDs), cacheDir)
		if failed > 0 {
			os.Exit(1)
		}
	},
}
