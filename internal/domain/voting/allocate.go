// Package voting implements the election engine: the nearest-neighbor
// vote allocator and the voting rules built on top of it.
package voting

import (
	"github.com/okian/psephos/internal/domain/model"
)

// Allocate assigns each non-abstaining voter's vote(s) to the nearest
// candidate(s) in issue space and returns the per-candidate counts.
//
// Each voter independently abstains with the configured apathy
// probability; otherwise the voter marks their votesPerVoter nearest
// candidates, one increment each. The returned tally has an entry for
// every candidate in the set, zero-defaulted. Randomness drives only
// the abstention draw; nearness is a deterministic geometric
// computation, so a fixed source reproduces the pass exactly.
func Allocate(electorate *model.Electorate, candidates *model.Candidates, opts ...Option) (model.VoteTally, error) {
	cfg := newConfig(opts...)
	if err := validatePass(electorate, candidates, cfg.votesPerVoter, cfg.apathy); err != nil {
		return nil, err
	}

	tally := make(model.VoteTally, candidates.Len())
	for _, idx := range candidates.Indices() {
		tally[idx] = 0
	}

	index := newCandidateIndex(candidates)
	for i := 0; i < electorate.Len(); i++ {
		if cfg.apathy > 0 && cfg.rng.Float64() < cfg.apathy {
			continue
		}
		for _, idx := range index.nearest(electorate.Position(i), cfg.votesPerVoter) {
			tally[idx]++
		}
	}
	return tally, nil
}

// validatePass fails fast on inputs no allocation pass can use.
func validatePass(electorate *model.Electorate, candidates *model.Candidates, votesPerVoter int, apathy float64) error {
	if electorate == nil {
		return ErrNilElectorate
	}
	if candidates == nil {
		return ErrNilCandidates
	}
	if candidates.Len() < 1 {
		return ErrNoCandidates
	}
	if electorate.Issues() != candidates.Issues() {
		return ErrIssueMismatch
	}
	if votesPerVoter < 1 {
		return ErrVotesPerVoter
	}
	if votesPerVoter > candidates.Len() {
		return ErrVotesExceedCandidates
	}
	if apathy < 0 || apathy > 1 {
		return ErrApathyRange
	}
	return nil
}
