// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the application's internal configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/flownet/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app
// config, a boolean indicating if the program should exit cleanly, or an
// ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("flownet", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Flownet - a process-network modeling and execution engine.

Usage:
  flownet [options] [NETWORK_PATH]

Arguments:
  NETWORK_PATH
    Path to a single .hcl network file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	networkFlag := flagSet.String("network", "", "Path to the network file or directory.")
	nFlag := flagSet.String("n", "", "Path to the network file or directory (shorthand).")
	boundaryFlag := flagSet.String("boundary", "Production", "Active boundary tag for the run.")
	maxIterFlag := flagSet.Int("max-iterations", 0, "Convergence loop ceiling. 0 uses the network's setting.")
	validateFlag := flagSet.Bool("validate", false, "Build and validate the network without running it.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *networkFlag != "" {
		path = *networkFlag
	} else if *nFlag != "" {
		path = *nFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *maxIterFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid max-iterations: cannot be negative"}
	}

	config, err := app.NewConfig(app.Config{
		NetworkPath:   path,
		Boundary:      *boundaryFlag,
		MaxIterations: *maxIterFlag,
		ValidateOnly:  *validateFlag,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
