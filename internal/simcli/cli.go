// Package simcli drives batch election simulations from the command
// line: a concurrent Monte Carlo sweep over one spec with per-run
// seeds, an aggregate fairness report, and a JSON results file.
package simcli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/psephos/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
	logDirPermission  = 0750
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a dated file under logs/ is used.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		logFile = filepath.Join("logs", "voting-sim-"+time.Now().Format("02-01-2006")+".log")
	}

	if dir := filepath.Dir(logFile); dir != "." {
		if err := os.MkdirAll(dir, logDirPermission); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	// Console keeps following along while the file keeps the record.
	if err := logger.InitWithWriter(io.MultiWriter(os.Stderr, file)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}

	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the simulation tool.
func ShowHelp() {
	os.Stdout.WriteString(`Psephos Simulation Tool
=======================

A concurrent Monte Carlo sweep driver for spatial election simulations.

Usage:
  go run cmd/simulate/main.go -rule <rule> [options]

Options:
  -rule string
        Voting rule: plurality, majority, approval, proportional (required)
  -issues int
        Dimensions of the issue space (default 2)
  -voters int
        Electorate size (default 10000)
  -candidates int
        Number of candidates (default 2)
  -electorate-scenario string
        Voter blocs: centered, bipolar, or tripolar (default "centered")
  -candidate-scenario string
        Candidate spread: uniform, centered, bipolar, or tripolar (default "uniform")
  -seed uint
        Base seed; sweep run r executes with seed+r (default 42)
  -apathy float
        Probability a voter abstains in a pass (default 0)
  -share-threshold float
        Majority: share the leader must exceed (0 = rule default 0.5)
  -round-knockouts int
        Majority: candidates eliminated per round (0 = rule default 1)
  -approvals int
        Approval: nearest candidates each voter approves (0 = rule default 2)
  -seats int
        Proportional: seats to allocate (0 = rule default 349)
  -min-seat-share float
        Proportional: threshold share for seat eligibility (0 = rule default 0.04)
  -runs int
        Number of runs in the sweep (default 1)
  -workers int
        Concurrent simulation workers (default CPU cores)
  -output-dir string
        Directory for the JSON results file (default: current directory)
  -log string
        Log file (default: logs/voting-sim-DD-MM-YYYY.log)
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  # Single deterministic plurality run
  go run cmd/simulate/main.go -rule plurality -seed 7

  # Monte Carlo sweep over 500 majority elections
  go run cmd/simulate/main.go -rule majority -runs 500 -workers 8

  # Proportional representation with a larger electorate
  go run cmd/simulate/main.go -rule proportional -voters 100000 -candidates 8 -runs 50
`)
}
