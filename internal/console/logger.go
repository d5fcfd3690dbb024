// Package console is the human-facing terminal output layer: plain progress
// lines and a spinner for long waits. Structured diagnostics go through
// zerolog; this package is only for what an operator watches during a run.
package console

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"

	"github.com/ZOO-Project/ogc-app-package-patterns-tester/types"
)

type Logger struct {
	OutputStyle types.OutputStyle
	Spinner     *spinner.Spinner
}

func NewLogger(style types.OutputStyle) *Logger {
	return &Logger{
		OutputStyle: style,
		Spinner: spinner.New(
			spinner.CharSets[11], // Default ⣾ style spinner, can modify this at the call site
			100*time.Millisecond,
			spinner.WithHiddenCursor(true)),
	}
}

func (l *Logger) Info(msg string, args ...any) {
	if l.OutputStyle == types.StyleHuman || l.OutputStyle == types.StyleHumanVerbose {
		fmt.Printf(msg+"\n", args...)
	}
	// Silent for machine modes
}

func (l *Logger) Verbose(msg string, args ...any) {
	if l.OutputStyle == types.StyleHumanVerbose {
		fmt.Printf(msg+"\n", args...)
	}
	// Silent for normal human and machine modes
}

func (l *Logger) Error(msg string, args ...any) {
	if l.OutputStyle == types.StyleHuman || l.OutputStyle == types.StyleHumanVerbose {
		fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	}
	// Silent for machine modes
}

func (l *Logger) Json(data any) {
	if l.OutputStyle == types.StyleMachineJSON {
		encoded, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(encoded))
	}
}

// StartSpinner starts the logger spinner. you can pass optionalCharset
// to override the default spinner. It is a variadic parameter but only
// the first argument will be used.
func (l *Logger) StartSpinner(text string, optionalCharset ...[]string) {
	if l.OutputStyle == types.StyleHuman || l.OutputStyle == types.StyleHumanVerbose {
		l.Spinner.Suffix = " " + text
		if len(optionalCharset) > 0 {
			l.Spinner.UpdateCharSet(optionalCharset[0])
		}
		l.Spinner.Start()
	}
}

func (l *Logger) StopSpinner() {
	if l.OutputStyle == types.StyleHuman || l.OutputStyle == types.StyleHumanVerbose {
		l.Spinner.Stop()
	}
}
