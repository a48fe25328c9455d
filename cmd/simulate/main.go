package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/psephos/internal/simcli"
)

// Default sweep configuration constants.
const (
	defaultIssues       = 2
	defaultVoters       = 10_000
	defaultCandidates   = 2
	defaultSeed         = 42
	defaultRuns         = 1
	defaultSweepTimeout = 10 * time.Minute
)

func main() {
	var (
		rule               = flag.String("rule", "", "Voting rule: plurality, majority, approval, proportional")
		issues             = flag.Int("issues", defaultIssues, "Dimensions of the issue space")
		voters             = flag.Int("voters", defaultVoters, "Electorate size")
		candidates         = flag.Int("candidates", defaultCandidates, "Number of candidates")
		electorateScenario = flag.String("electorate-scenario", "centered", "Voter blocs: centered, bipolar, or tripolar")
		candidateScenario  = flag.String("candidate-scenario", "uniform", "Candidate spread: uniform, centered, bipolar, or tripolar")
		seed               = flag.Uint64("seed", defaultSeed, "Base seed; sweep run r executes with seed+r")
		apathy             = flag.Float64("apathy", 0, "Probability a voter abstains in a pass")
		shareThreshold     = flag.Float64("share-threshold", 0, "Majority: share the leader must exceed (0 = rule default)")
		roundKnockouts     = flag.Int("round-knockouts", 0, "Majority: candidates eliminated per round (0 = rule default)")
		approvals          = flag.Int("approvals", 0, "Approval: approvals per voter (0 = rule default)")
		seats              = flag.Int("seats", 0, "Proportional: seats to allocate (0 = rule default)")
		minSeatShare       = flag.Float64("min-seat-share", 0, "Proportional: threshold share (0 = rule default)")
		runs               = flag.Int("runs", defaultRuns, "Number of runs in the sweep")
		workers            = flag.Int("workers", runtime.NumCPU(), "Concurrent simulation workers")
		outputDir          = flag.String("output-dir", "", "Directory for the JSON results file")
		logFile            = flag.String("log", "", "Log file (default: logs/voting-sim-DD-MM-YYYY.log)")
		verbose            = flag.Bool("verbose", false, "Enable debug logging")
		help               = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simcli.ShowHelp()
		return
	}

	// Setup logging
	if err := simcli.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultSweepTimeout)
	defer cancel()

	// Create sweep configuration
	config := &simcli.Config{
		Rule:               *rule,
		Issues:             *issues,
		Voters:             *voters,
		Candidates:         *candidates,
		ElectorateScenario: *electorateScenario,
		CandidateScenario:  *candidateScenario,
		Seed:               *seed,
		Apathy:             *apathy,
		ShareThreshold:     *shareThreshold,
		RoundKnockouts:     *roundKnockouts,
		ApprovalsPerVoter:  *approvals,
		Seats:              *seats,
		MinSeatShare:       *minSeatShare,
		Runs:               *runs,
		Workers:            *workers,
		OutputDir:          *outputDir,
		LogFile:            *logFile,
		Verbose:            *verbose,
	}

	// Run the sweep
	if err := simcli.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
