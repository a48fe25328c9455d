package voting

import (
	"context"
	"math/rand/v2"

	"github.com/okian/psephos/internal/domain/model"
)

// Plurality elects the candidate with the most single votes in one
// allocation pass. Tally ties resolve to the lowest candidate index.
type Plurality struct {
	apathy float64
	rng    *rand.Rand
}

// NewPlurality creates a plurality rule with configuration options.
func NewPlurality(opts ...Option) *Plurality {
	cfg := newConfig(opts...)
	return &Plurality{apathy: cfg.apathy, rng: cfg.rng}
}

// Name returns the registry name of the rule.
func (p *Plurality) Name() string { return NamePlurality }

// Elect runs a single one-vote pass and picks the stable argmax.
func (p *Plurality) Elect(_ context.Context, electorate *model.Electorate, candidates *model.Candidates) (*model.ElectionResult, error) {
	tally, err := Allocate(electorate, candidates, WithApathy(p.apathy), WithRand(p.rng))
	if err != nil {
		return nil, err
	}
	leader, _, _ := tally.Leader()
	return &model.ElectionResult{
		Winners:   []int{leader},
		CastVotes: tally,
	}, nil
}
