package simcli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/okian/psephos/internal/domain/population"
	"github.com/okian/psephos/internal/domain/voting"
	"github.com/okian/psephos/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete simulation sweep.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		RunsRequested: config.Runs,
		StartTime:     time.Now(),
	}

	logger.Get().Info(ctx, "starting psephos simulation sweep",
		logger.String("rule", config.Rule),
		logger.Int("issues", config.Issues),
		logger.Int("voters", config.Voters),
		logger.Int("candidates", config.Candidates),
		logger.String("electorateScenario", config.ElectorateScenario),
		logger.String("candidateScenario", config.CandidateScenario),
		logger.Int64("seed", int64(config.Seed)),
		logger.Int("runs", config.Runs),
		logger.Int("workers", config.Workers))

	// Step 1: Reject bad parameters before spending any compute
	if err := checkConfig(config); err != nil {
		return fmt.Errorf("invalid simulation parameters: %w", err)
	}

	// Step 2: Run the sweep
	outcomes, err := runSweep(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("simulation sweep failed: %w", err)
	}

	// Step 3: Aggregate and display the report
	report := buildReport(outcomes)
	displayReport(ctx, report, outcomes, config.Verbose)

	// Step 4: Save outcomes to file
	if err := saveOutcomes(ctx, config, outcomes); err != nil {
		logger.Get().Warn(ctx, "failed to save outcomes", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "sweep completed successfully")
	return nil
}

// checkConfig normalizes the rule and scenario names and rejects
// parameters the engine would refuse.
func checkConfig(config *Config) error {
	config.Rule = strings.ToLower(strings.TrimSpace(config.Rule))
	config.ElectorateScenario = strings.ToLower(strings.TrimSpace(config.ElectorateScenario))
	config.CandidateScenario = strings.ToLower(strings.TrimSpace(config.CandidateScenario))

	if _, err := voting.New(config.Rule); err != nil {
		return fmt.Errorf("unknown rule %q (supported: %s)", config.Rule, strings.Join(voting.Supported(), ", "))
	}
	// Empty scenarios are allowed; the engine fills its defaults.
	if s := config.ElectorateScenario; s != "" && !slices.Contains(population.ElectorateScenarios(), s) {
		return fmt.Errorf("unknown electorate scenario %q (supported: %s)", s, strings.Join(population.ElectorateScenarios(), ", "))
	}
	if s := config.CandidateScenario; s != "" && !slices.Contains(population.CandidateScenarios(), s) {
		return fmt.Errorf("unknown candidate scenario %q (supported: %s)", s, strings.Join(population.CandidateScenarios(), ", "))
	}
	switch {
	case config.Issues < 1:
		return fmt.Errorf("issues must be at least 1")
	case config.Voters < 1:
		return fmt.Errorf("voters must be at least 1")
	case config.Candidates < 1:
		return fmt.Errorf("candidates must be at least 1")
	case config.Apathy < 0 || config.Apathy > 1:
		return fmt.Errorf("apathy must be within [0, 1]")
	case config.ShareThreshold < 0 || config.ShareThreshold >= 1:
		return fmt.Errorf("share threshold must be within [0, 1)")
	case config.MinSeatShare < 0 || config.MinSeatShare >= 1:
		return fmt.Errorf("min seat share must be within [0, 1)")
	case config.ApprovalsPerVoter > config.Candidates:
		return fmt.Errorf("approvals per voter cannot exceed candidates")
	case config.RoundKnockouts < 0:
		return fmt.Errorf("round knockouts cannot be negative")
	case config.Seats < 0:
		return fmt.Errorf("seats cannot be negative")
	case config.Runs < 1:
		return fmt.Errorf("runs must be at least 1")
	case config.Workers < 1:
		return fmt.Errorf("workers must be at least 1")
	}
	return nil
}

// saveOutcomes writes the sweep outcomes to a JSON file in the
// configured output directory.
func saveOutcomes(ctx context.Context, config *Config, outcomes []Outcome) error {
	if len(outcomes) == 0 {
		return fmt.Errorf("no outcomes to save")
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := "simulation_results_" + timestamp + ".json"
	if config.OutputDir != "" {
		if err := os.MkdirAll(config.OutputDir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		filename = filepath.Join(config.OutputDir, filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	// One outcome per line keeps large sweeps diffable and greppable.
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, outcome := range outcomes {
		jsonData, err := json.Marshal(outcome)
		if err != nil {
			return fmt.Errorf("failed to marshal outcome %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write outcome %d: %w", i, err)
		}

		if i < len(outcomes)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "outcomes saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final sweep statistics.
func displayFinalStats(stats *Stats) {
	var successRate, runsPerSecond float64

	if stats.RunsRequested > 0 {
		successRate = float64(stats.RunsCompleted) / float64(stats.RunsRequested) * percentageMultiplier
	}

	if stats.Duration > 0 {
		runsPerSecond = float64(stats.RunsCompleted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("runsRequested", stats.RunsRequested),
		logger.Int("runsCompleted", stats.RunsCompleted),
		logger.Int("runsFailed", stats.RunsFailed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("runsPerSecond", runsPerSecond))
}
