package simcli

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/psephos/pkg/logger"
)

// Report aggregates a sweep's fairness outcomes.
type Report struct {
	Runs           int
	MeanWeighted   float64
	MeanUnweighted float64
	BestWeighted   float64
	WorstWeighted  float64
	BestRun        int    // sweep index of the fairest run
	BestSeed       uint64 // seed that reproduces the fairest run
	MeanRounds     float64
	WinnerCounts   map[int]int // candidate index -> wins across the sweep
}

// buildReport computes sweep aggregates from the completed outcomes.
// outcomes must be non-empty.
func buildReport(outcomes []Outcome) *Report {
	weighted := make([]float64, len(outcomes))
	unweighted := make([]float64, len(outcomes))
	rounds := make([]float64, len(outcomes))
	winners := make(map[int]int)

	best := 0
	worst := outcomes[0].WeightedFairness
	for i, outcome := range outcomes {
		weighted[i] = outcome.WeightedFairness
		unweighted[i] = outcome.UnweightedFairness
		rounds[i] = float64(outcome.Rounds)
		for _, w := range outcome.Winners {
			winners[w]++
		}
		if outcome.WeightedFairness > outcomes[best].WeightedFairness {
			best = i
		}
		if outcome.WeightedFairness < worst {
			worst = outcome.WeightedFairness
		}
	}

	return &Report{
		Runs:           len(outcomes),
		MeanWeighted:   stat.Mean(weighted, nil),
		MeanUnweighted: stat.Mean(unweighted, nil),
		BestWeighted:   outcomes[best].WeightedFairness,
		WorstWeighted:  worst,
		BestRun:        outcomes[best].Run,
		BestSeed:       outcomes[best].Seed,
		MeanRounds:     stat.Mean(rounds, nil),
		WinnerCounts:   winners,
	}
}

// displayReport logs the aggregate view plus the fairest runs.
func displayReport(ctx context.Context, report *Report, outcomes []Outcome, verbose bool) {
	logger.Get().Info(ctx, "sweep report",
		logger.Int("runs", report.Runs),
		logger.Float64("meanWeightedFairness", report.MeanWeighted),
		logger.Float64("meanUnweightedFairness", report.MeanUnweighted),
		logger.Float64("bestWeightedFairness", report.BestWeighted),
		logger.Float64("worstWeightedFairness", report.WorstWeighted),
		logger.Int("bestRun", report.BestRun),
		logger.Int64("bestSeed", int64(report.BestSeed)),
		logger.Float64("meanRounds", report.MeanRounds))

	// Fairest runs first.
	sorted := make([]Outcome, len(outcomes))
	copy(sorted, outcomes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].WeightedFairness > sorted[j].WeightedFairness
	})

	topN := topDisplayCount
	if len(sorted) < topN {
		topN = len(sorted)
	}
	for i := 0; i < topN; i++ {
		outcome := sorted[i]
		logger.Get().Info(ctx, "top run",
			logger.Int("place", i+1),
			logger.Int("run", outcome.Run),
			logger.Int64("seed", int64(outcome.Seed)),
			logger.Any("winners", outcome.Winners),
			logger.Float64("weightedFairness", outcome.WeightedFairness))
	}

	if verbose {
		// Per-candidate win counts tell which positions dominate the
		// issue space across the sweep.
		indices := make([]int, 0, len(report.WinnerCounts))
		for idx := range report.WinnerCounts {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		for _, idx := range indices {
			logger.Get().Debug(ctx, "winner count",
				logger.Int("candidate", idx),
				logger.Int("wins", report.WinnerCounts[idx]))
		}
	}
}
