package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Verbose bool

	configFile    string
	serverURL     string
	authToken     string
	patternsDir   string
	cacheDir      string
	forceDownload bool
)

var rootCmd = &cobra.Command{
	Use:   "patterns-tester",
	Short: "Lifecycle tester for EOAP application package patterns",
	Long: `patterns-tester drives CWL application package patterns through their full
lifecycle against an OGC API Processes server: deploy the workflow, execute it
with its example parameters, monitor the job to completion, and clean up the
process and its jobs afterwards.

Pattern parameter files live in the patterns directory (pattern-<n>.json) and
CWL workflows are fetched from the eoap/application-package-patterns repository
and cached locally.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("patterns-tester: OGC API Processes pattern lifecycle testing.")
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Enable verbose logs to stderr")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to patterns.yml (optional)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server-url", "", "OGC API Processes server URL (overrides config file)")
	rootCmd.PersistentFlags().StringVar(&authToken, "auth-token", "", "Bearer token for the server (overrides config file)")
	rootCmd.PersistentFlags().StringVar(&patternsDir, "patterns-dir", "data/patterns", "Directory with pattern parameter files")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "temp/cwl", "Directory for cached CWL workflows")
	rootCmd.PersistentFlags().BoolVar(&forceDownload, "force-download", false, "Re-download CWL workflows even if cached")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
