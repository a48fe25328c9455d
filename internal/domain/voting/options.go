package voting

import (
	"math/rand/v2"
)

// Default rule configuration constants. The seat defaults model a
// national parliament with a legal entry threshold.
const (
	defaultShareThreshold = 0.5
	defaultRoundKnockouts = 1
	defaultApprovals      = 2
	defaultSeats          = 349
	defaultMinSeatShare   = 0.04
	defaultRandomSeed     = 42
)

// config collects the tunables shared by the allocator and the rules.
// Each rule reads only the fields that concern it.
type config struct {
	votesPerVoter  int
	apathy         float64
	rng            *rand.Rand
	shareThreshold float64
	roundKnockouts int
	approvals      int
	seats          int
	minSeatShare   float64
}

func newConfig(opts ...Option) config {
	c := config{
		votesPerVoter:  1,
		shareThreshold: defaultShareThreshold,
		roundKnockouts: defaultRoundKnockouts,
		approvals:      defaultApprovals,
		seats:          defaultSeats,
		minSeatShare:   defaultMinSeatShare,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.rng == nil {
		// Deterministic by default so repeated runs are reproducible
		// without explicit seeding.
		c.rng = rand.New(rand.NewPCG(defaultRandomSeed, defaultRandomSeed))
	}
	return c
}

// Option applies a configuration option to the allocator or a rule.
type Option func(*config)

// WithVotesPerVoter sets how many nearest candidates each voter marks.
func WithVotesPerVoter(n int) Option {
	return func(c *config) {
		c.votesPerVoter = n
	}
}

// WithApathy sets the probability that a voter abstains in a pass.
func WithApathy(p float64) Option {
	return func(c *config) {
		c.apathy = p
	}
}

// WithRand sets the random source used for abstention draws and seat
// remainder distribution. Give every concurrent run its own source.
func WithRand(r *rand.Rand) Option {
	return func(c *config) {
		if r != nil {
			c.rng = r
		}
	}
}

// WithSeed is shorthand for WithRand over a PCG seeded from seed.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.rng = rand.New(rand.NewPCG(seed, seed<<1|1))
	}
}

// WithShareThreshold sets the vote share a majority leader must exceed
// to end the runoff.
func WithShareThreshold(t float64) Option {
	return func(c *config) {
		if t > 0 {
			c.shareThreshold = t
		}
	}
}

// WithRoundKnockouts sets how many trailing candidates each majority
// round eliminates.
func WithRoundKnockouts(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.roundKnockouts = n
		}
	}
}

// WithApprovalsPerVoter sets how many candidates each voter approves.
func WithApprovalsPerVoter(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.approvals = n
		}
	}
}

// WithSeats sets the fixed seat budget for proportional representation.
func WithSeats(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.seats = n
		}
	}
}

// WithMinSeatShare sets the legal threshold below which a candidate is
// excluded from seat allocation.
func WithMinSeatShare(s float64) Option {
	return func(c *config) {
		if s >= 0 {
			c.minSeatShare = s
		}
	}
}
