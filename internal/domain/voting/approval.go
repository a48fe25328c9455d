package voting

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/okian/psephos/internal/domain/model"
)

// Approval lets each voter approve their n closest candidates in one
// allocation pass; the candidate with the most approvals wins.
type Approval struct {
	apathy    float64
	approvals int
	rng       *rand.Rand
}

// NewApproval creates an approval rule with configuration options.
func NewApproval(opts ...Option) *Approval {
	cfg := newConfig(opts...)
	return &Approval{apathy: cfg.apathy, approvals: cfg.approvals, rng: cfg.rng}
}

// Name returns the registry name of the rule.
func (a *Approval) Name() string { return NameApproval }

// Elect runs a single pass with one approval per nearest candidate.
// Asking for more approvals than there are candidates is a
// precondition failure, never a silent clamp.
func (a *Approval) Elect(_ context.Context, electorate *model.Electorate, candidates *model.Candidates) (*model.ElectionResult, error) {
	if candidates != nil && a.approvals > candidates.Len() {
		return nil, fmt.Errorf("%w: %d approvals for %d candidates", ErrApprovalsExceedCandidates, a.approvals, candidates.Len())
	}
	tally, err := Allocate(electorate, candidates,
		WithVotesPerVoter(a.approvals),
		WithApathy(a.apathy),
		WithRand(a.rng))
	if err != nil {
		return nil, err
	}
	leader, _, _ := tally.Leader()
	return &model.ElectionResult{
		Winners:   []int{leader},
		CastVotes: tally,
	}, nil
}
