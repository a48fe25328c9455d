package voting

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/okian/psephos/internal/domain/model"
)

// Majority runs iterative runoff rounds, eliminating the weakest
// candidates each round, until the leader's share of the original
// electorate strictly exceeds the configured threshold or no further
// elimination is possible.
type Majority struct {
	apathy         float64
	shareThreshold float64
	roundKnockouts int
	rng            *rand.Rand
}

// NewMajority creates a majority runoff rule with configuration options.
func NewMajority(opts ...Option) *Majority {
	cfg := newConfig(opts...)
	return &Majority{
		apathy:         cfg.apathy,
		shareThreshold: cfg.shareThreshold,
		roundKnockouts: cfg.roundKnockouts,
		rng:            cfg.rng,
	}
}

// Name returns the registry name of the rule.
func (m *Majority) Name() string { return NameMajority }

// Elect loops runoff rounds over a strictly shrinking candidate subset.
//
// Each round allocates single votes over the current subset. The leader
// share denominator is always the ORIGINAL electorate size, not the
// round's turnout. Knockouts are clamped so at least two candidates
// survive into the next round; once the clamp reaches zero the round is
// terminal regardless of share. Eliminated candidates are removed by
// original index, so a tally entry always names the same physical
// candidate in every round. The full round history is retained on the
// result for audit.
func (m *Majority) Elect(ctx context.Context, electorate *model.Electorate, candidates *model.Candidates) (*model.ElectionResult, error) {
	if err := validatePass(electorate, candidates, 1, m.apathy); err != nil {
		return nil, err
	}

	current := candidates
	maxRounds := candidates.Len()
	var rounds []model.Round

	for number := 1; number <= maxRounds; number++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("runoff interrupted: %w", err)
		}

		tally, err := Allocate(electorate, current, WithApathy(m.apathy), WithRand(m.rng))
		if err != nil {
			return nil, err
		}

		leader, leaderVotes, _ := tally.Leader()
		share := float64(leaderVotes) / float64(electorate.Len())

		knockouts := m.roundKnockouts
		for knockouts > 0 && current.Len()-knockouts < 2 {
			knockouts--
		}

		round := model.Round{
			Number:      number,
			Tally:       tally,
			Leader:      leader,
			LeaderShare: share,
		}

		// Terminal when the leader clears the threshold, or when the
		// clamp leaves nothing to eliminate (the two-candidate floor).
		if share > m.shareThreshold || knockouts == 0 {
			rounds = append(rounds, round)
			return &model.ElectionResult{
				Winners:   []int{leader},
				CastVotes: tally,
				Rounds:    rounds,
			}, nil
		}

		round.Eliminated = tally.Weakest(knockouts)
		rounds = append(rounds, round)

		next, err := current.Without(round.Eliminated...)
		if err != nil {
			return nil, fmt.Errorf("eliminating candidates: %w", err)
		}
		if next.Len() >= current.Len() {
			return nil, fmt.Errorf("runoff did not shrink the candidate set: %d -> %d", current.Len(), next.Len())
		}
		current = next
	}

	// Unreachable: the set shrinks every non-terminal round.
	return nil, fmt.Errorf("runoff exceeded %d rounds without terminating", maxRounds)
}
