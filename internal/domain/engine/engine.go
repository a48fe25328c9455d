// Package engine executes complete simulation runs: synthesize a
// population, run the chosen voting rule, and score the outcome.
package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/psephos/internal/domain/fairness"
	"github.com/okian/psephos/internal/domain/model"
	"github.com/okian/psephos/internal/domain/population"
	"github.com/okian/psephos/internal/domain/voting"
)

// Execute synthesizes the run's population from its scenarios and
// carries the run to a completed record. Runs are embarrassingly
// parallel: all randomness flows from one source derived from the
// spec's seed, so a spec reproduces exactly and concurrent runs never
// share state.
func Execute(ctx context.Context, spec model.RunSpec) (*model.RunRecord, error) {
	spec = withDefaults(spec)
	rng := sourceFor(spec.Seed)

	electorate, err := population.Electorate(spec.ElectorateScenario, spec.Voters, spec.Issues, population.WithRand(rng))
	if err != nil {
		return nil, fmt.Errorf("synthesizing electorate: %w", err)
	}
	candidates, err := population.Candidates(spec.CandidateScenario, spec.Candidates, spec.Issues, population.WithRand(rng))
	if err != nil {
		return nil, fmt.Errorf("synthesizing candidates: %w", err)
	}

	return ExecuteOver(ctx, spec, electorate, candidates, rng)
}

// ExecuteOver runs the spec's rule over caller-supplied matrices. rng
// may be nil, in which case a source is derived from the spec's seed.
func ExecuteOver(ctx context.Context, spec model.RunSpec, electorate *model.Electorate, candidates *model.Candidates, rng *rand.Rand) (*model.RunRecord, error) {
	spec = withDefaults(spec)
	if rng == nil {
		rng = sourceFor(spec.Seed)
	}
	started := time.Now()

	rule, err := voting.New(spec.Rule, ruleOptions(spec, rng)...)
	if err != nil {
		return nil, err
	}

	result, err := rule.Elect(ctx, electorate, candidates)
	if err != nil {
		return nil, fmt.Errorf("electing under %s: %w", spec.Rule, err)
	}

	weighted, err := fairness.Weighted(electorate, candidates, result)
	if err != nil {
		return nil, fmt.Errorf("scoring weighted fairness: %w", err)
	}
	unweighted, err := fairness.Unweighted(electorate, candidates, result)
	if err != nil {
		return nil, fmt.Errorf("scoring unweighted fairness: %w", err)
	}

	return &model.RunRecord{
		RunID:              uuid.New().String(),
		Spec:               spec,
		Result:             result,
		WeightedFairness:   weighted,
		UnweightedFairness: unweighted,
		Elapsed:            time.Since(started),
		CompletedAt:        time.Now(),
	}, nil
}

// withDefaults fills the optional spec fields a caller may omit.
func withDefaults(spec model.RunSpec) model.RunSpec {
	spec.Rule = strings.ToLower(strings.TrimSpace(spec.Rule))
	if spec.ElectorateScenario == "" {
		spec.ElectorateScenario = population.ScenarioCentered
	}
	if spec.CandidateScenario == "" {
		spec.CandidateScenario = population.ScenarioUniform
	}
	return spec
}

// sourceFor derives the run's random source from its seed.
func sourceFor(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed<<1|1))
}

// ruleOptions translates the spec's rule parameters, passing only
// those the caller set so rule defaults stay in charge otherwise.
func ruleOptions(spec model.RunSpec, rng *rand.Rand) []voting.Option {
	opts := []voting.Option{
		voting.WithApathy(spec.ApathyProb),
		voting.WithRand(rng),
	}
	if spec.ShareThreshold > 0 {
		opts = append(opts, voting.WithShareThreshold(spec.ShareThreshold))
	}
	if spec.RoundKnockouts > 0 {
		opts = append(opts, voting.WithRoundKnockouts(spec.RoundKnockouts))
	}
	if spec.ApprovalsPerVoter > 0 {
		opts = append(opts, voting.WithApprovalsPerVoter(spec.ApprovalsPerVoter))
	}
	if spec.Seats > 0 {
		opts = append(opts, voting.WithSeats(spec.Seats))
	}
	if spec.MinSeatShare > 0 {
		opts = append(opts, voting.WithMinSeatShare(spec.MinSeatShare))
	}
	return opts
}

// Fingerprint summarizes everything that determines a run's outcome.
// Two specs with equal fingerprints produce identical elections, which
// makes completed runs safe to serve from cache.
func Fingerprint(spec model.RunSpec) string {
	spec = withDefaults(spec)
	return fmt.Sprintf("%s|%d|%d|%d|%s|%s|%d|%g|%g|%d|%d|%d|%g",
		spec.Rule, spec.Issues, spec.Voters, spec.Candidates,
		spec.ElectorateScenario, spec.CandidateScenario,
		spec.Seed, spec.ApathyProb,
		spec.ShareThreshold, spec.RoundKnockouts,
		spec.ApprovalsPerVoter, spec.Seats, spec.MinSeatShare)
}
