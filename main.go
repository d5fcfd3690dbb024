package main

import (
	"fmt"
	"os"

	"github.com/ZOO-Project/ogc-app-package-patterns-tester/cmd"
	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	isVerbose := false
	for _, arg := range os.Args {
		if arg == "--verbose" || arg == "-v" {
			isVerbose = true
		}
	}

	// Terminal logging until a command switches to a run log file.
	if err := logging.ConfigureGlobalLogger(isVerbose, ""); err != nil {
		// Fallback to basic stderr if logger setup fails
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Msg("Starting patterns-tester command execution")
	cmd.Execute()
}
