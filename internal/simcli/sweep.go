package simcli

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/psephos/internal/domain/engine"
	"github.com/okian/psephos/internal/domain/model"
	"github.com/okian/psephos/pkg/logger"
)

// runSweep executes the configured number of runs concurrently and
// returns the completed outcomes in sweep order. Failed runs are
// logged and skipped; the sweep only errors when nothing completed.
func runSweep(ctx context.Context, config *Config, stats *Stats) ([]Outcome, error) {
	logger.Get().Info(ctx, "running simulation sweep",
		logger.String("rule", config.Rule),
		logger.Int("runs", config.Runs),
		logger.Int("workers", config.Workers))

	outcomes := make([]*Outcome, config.Runs)
	var (
		completed int64
		failed    int64
	)

	// Workers pull sweep indices off a channel; each index carries its
	// own derived seed, so order of execution never changes results.
	runChan := make(chan int, config.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range runChan {
				select {
				case <-ctx.Done():
					return
				default:
					outcome, err := executeSingleRun(ctx, config, index)
					if err != nil {
						atomic.AddInt64(&failed, 1)
						logger.Get().Warn(ctx, "run failed", logger.Int("run", index), logger.Error(err))
						continue
					}
					outcomes[index] = outcome
					atomic.AddInt64(&completed, 1)
				}
			}
		}()
	}

	// Send sweep indices to workers
	go func() {
		defer close(runChan)
		for i := 0; i < config.Runs; i++ {
			select {
			case <-ctx.Done():
				return
			case runChan <- i:
			}
		}
	}()

	wg.Wait()

	// Compact away failed slots, preserving sweep order.
	valid := make([]Outcome, 0, config.Runs)
	for _, outcome := range outcomes {
		if outcome != nil {
			valid = append(valid, *outcome)
		}
	}

	stats.RunsCompleted = int(atomic.LoadInt64(&completed))
	stats.RunsFailed = int(atomic.LoadInt64(&failed))

	if len(valid) == 0 {
		return nil, fmt.Errorf("all %d runs failed", config.Runs)
	}

	logger.Get().Info(ctx, "sweep finished",
		logger.Int("completed", stats.RunsCompleted),
		logger.Int("failed", stats.RunsFailed))

	return valid, nil
}

// executeSingleRun runs one election for the given sweep index.
func executeSingleRun(ctx context.Context, config *Config, index int) (*Outcome, error) {
	spec := specFor(config, index)

	record, err := engine.Execute(ctx, spec)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Run:                index,
		Seed:               spec.Seed,
		Winners:            record.Result.Winners,
		Tally:              record.Result.CastVotes,
		Rounds:             len(record.Result.Rounds),
		WeightedFairness:   record.WeightedFairness,
		UnweightedFairness: record.UnweightedFairness,
		ElapsedMS:          record.Elapsed.Milliseconds(),
	}, nil
}

// specFor builds the run spec for one sweep index. Each run gets an
// offset seed so the sweep is reproducible yet runs stay independent.
func specFor(config *Config, index int) model.RunSpec {
	return model.RunSpec{
		Rule:               config.Rule,
		Issues:             config.Issues,
		Voters:             config.Voters,
		Candidates:         config.Candidates,
		ElectorateScenario: config.ElectorateScenario,
		CandidateScenario:  config.CandidateScenario,
		Seed:               config.Seed + uint64(index),
		ApathyProb:         config.Apathy,
		ShareThreshold:     config.ShareThreshold,
		RoundKnockouts:     config.RoundKnockouts,
		ApprovalsPerVoter:  config.ApprovalsPerVoter,
		Seats:              config.Seats,
		MinSeatShare:       config.MinSeatShare,
	}
}
