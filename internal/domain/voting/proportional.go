package voting

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/okian/psephos/internal/domain/model"
)

// Proportional apportions a fixed seat budget across candidates by
// vote share, after excluding candidates below a legal entry threshold.
type Proportional struct {
	apathy       float64
	seats        int
	minSeatShare float64
	rng          *rand.Rand
}

// NewProportional creates a proportional representation rule with
// configuration options.
func NewProportional(opts ...Option) *Proportional {
	cfg := newConfig(opts...)
	return &Proportional{
		apathy:       cfg.apathy,
		seats:        cfg.seats,
		minSeatShare: cfg.minSeatShare,
		rng:          cfg.rng,
	}
}

// Name returns the registry name of the rule.
func (p *Proportional) Name() string { return NameProportional }

// Elect allocates seats from a single one-vote pass.
//
// Candidates whose share of the total electorate falls below the
// minimum stay in the vote tally but get no seats. Each survivor
// receives round(votes/remaining x seats), where remaining is the
// electorate size minus the excluded candidates' votes. Ordinary
// rounding can miss the budget in either direction, so seats are then
// added to (or taken from) uniformly random survivors until the total
// is exact. The returned CastVotes holds seats, not raw votes.
func (p *Proportional) Elect(_ context.Context, electorate *model.Electorate, candidates *model.Candidates) (*model.ElectionResult, error) {
	if p.seats < 1 {
		return nil, ErrSeatCount
	}
	tally, err := Allocate(electorate, candidates, WithApathy(p.apathy), WithRand(p.rng))
	if err != nil {
		return nil, err
	}

	totalVoters := electorate.Len()
	excludedVotes := 0
	survivors := make([]int, 0, len(tally))
	for _, idx := range tally.SortedIndices() {
		share := float64(tally[idx]) / float64(totalVoters)
		if share < p.minSeatShare {
			excludedVotes += tally[idx]
			continue
		}
		survivors = append(survivors, idx)
	}

	remaining := totalVoters - excludedVotes
	if remaining <= 0 {
		return nil, ErrNoRemainingVotes
	}
	if len(survivors) == 0 {
		return nil, ErrNoEligible
	}

	seats := make(model.VoteTally, len(survivors))
	for _, idx := range survivors {
		seats[idx] = int(math.Round(float64(tally[idx]) / float64(remaining) * float64(p.seats)))
	}

	// Correct rounding drift one seat at a time against random
	// survivors until the budget is met exactly.
	allocated := seats.Total()
	for allocated < p.seats {
		seats[survivors[p.rng.IntN(len(survivors))]]++
		allocated++
	}
	for allocated > p.seats {
		idx := survivors[p.rng.IntN(len(survivors))]
		if seats[idx] > 0 {
			seats[idx]--
			allocated--
		}
	}

	leader, _, _ := seats.Leader()
	return &model.ElectionResult{
		Winners:   []int{leader},
		CastVotes: seats,
	}, nil
}
