package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ZOO-Project/ogc-app-package-patterns-tester/types"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

// TODO
// --no-tui for headless scripting

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Scaffold a patterns-tester workspace",
	Long: `Initialize a patterns-tester workspace:
  - A patterns.yml configuration file pointing at your server
  - A data/patterns/ directory for pattern parameter files
  - A temp/cwl/ directory for cached CWL workflows

An interactive prompt collects the server URL, an optional auth token, and
the patterns directory. With an optional [dir] the workspace is created in a
new subdirectory instead of the current one. Run 'patterns-tester sync-params'
afterwards to fetch the example parameters.`,
	Run: func(cmd *cobra.Command, args []string) {
		server, token, patterns, canceled := RunInitTUI()
		if canceled {
			fmt.Println("✖ init canceled.")
			return
		}

		targetDir := "."
		if len(args) > 0 {
			targetDir = args[0]
		}

		configPath := filepath.Join(targetDir, defaultConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			cobra.CheckErr(fmt.Errorf("%s already exists, refusing to overwrite", configPath))
		}

		fmt.Println("↪ scaffolding workspace ...")

		cfg := types.TesterConfig{
			Server: types.ServerConfig{
				BaseURL:   server,
				AuthToken: token,
			},
			PatternsDir: patterns,
			CacheDir:    filepath.Join("temp", "cwl"),
		}
		if err := types.ValidateServerConfig(&cfg.Server); err != nil {
			cobra.CheckErr(err)
		}

		for _, dir := range []string{cfg.PatternsDir, cfg.CacheDir} {
			if err := os.MkdirAll(filepath.Join(targetDir, dir), 0755); err != nil {
				cobra.CheckErr(err)
			}
		}

		data, err := yaml.Marshal(&cfg)
		if err != nil {
			cobra.CheckErr(err)
		}
		if err := os.WriteFile(configPath, data, 0644); err != nil {
			cobra.CheckErr(err)
		}

		fmt.Printf("✓ workspace initialized, configuration written to %s\n", configPath)
		fmt.Println("  Next: patterns-tester sync-params")
	},
}
